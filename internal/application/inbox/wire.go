package inbox

import (
	"github.com/google/wire"

	"github.com/secondbrain/backend/internal/application/ingestion"
)

// ProviderSet 收件箱应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewService,
	wire.Bind(new(Uploader), new(*ingestion.Service)),
)
