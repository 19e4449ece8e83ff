package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	appChat "github.com/secondbrain/backend/internal/application/chat"
	"github.com/secondbrain/backend/internal/domain/graph"
	"github.com/secondbrain/backend/internal/domain/source"
	"github.com/secondbrain/backend/internal/infrastructure/discovery"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	answerStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)

// bucketOrder 历史分组显示顺序，与侧边栏一致
var bucketOrder = []struct {
	bucket source.Bucket
	label  string
}{
	{source.BucketVideo, "Videos"},
	{source.BucketDocument, "Documents"},
	{source.BucketWeb, "Web"},
}

func renderHistory(w io.Writer, history *appChat.HistoryDTO) {
	groups := make(map[source.Bucket][]appChat.HistoryItem, len(bucketOrder))
	for _, item := range history.Chats {
		b := item.Bucket
		if b == "" {
			b = source.BucketOf(item.SourceType)
		}
		groups[b] = append(groups[b], item)
	}

	for i, g := range bucketOrder {
		if i > 0 {
			fmt.Fprintln(w)
		}
		items := groups[g.bucket]
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render(g.label), countStyle.Render(fmt.Sprintf("(%d)", len(items))))
		if len(items) == 0 {
			fmt.Fprintln(w, dimStyle.Render("  no chats"))
			continue
		}
		for _, item := range items {
			fmt.Fprintf(w, "  %s  %s  %s\n",
				titleStyle.Render(item.Title),
				idStyle.Render(item.ID),
				dimStyle.Render(item.UpdatedAt.Local().Format("2006-01-02 15:04")),
			)
		}
	}
}

func renderAnswer(w io.Writer, result *appChat.AskResult) {
	fmt.Fprintln(w, answerStyle.Render(result.Answer))
	fmt.Fprintf(w, "\n%s %s\n", dimStyle.Render("chat:"), idStyle.Render(result.ChatID))
}

func renderGraph(w io.Writer, g *graph.Graph) {
	var sources, keywords []graph.Node
	for _, n := range g.Nodes {
		if n.Type == graph.NodeKeyword {
			keywords = append(keywords, n)
		} else {
			sources = append(sources, n)
		}
	}

	fmt.Fprintf(w, "%s %s nodes, %s links\n",
		headerStyle.Render("Knowledge graph"),
		countStyle.Render(fmt.Sprint(len(g.Nodes))),
		countStyle.Render(fmt.Sprint(len(g.Links))),
	)

	fmt.Fprintln(w, headerStyle.Render("Sources"))
	for _, n := range sources {
		fmt.Fprintf(w, "  %s  %s\n", titleStyle.Render(n.Name), idStyle.Render(n.ID))
	}

	if len(keywords) == 0 {
		return
	}
	// 共享来源多的关键词排在前面
	sort.SliceStable(keywords, func(i, j int) bool { return keywords[i].Val > keywords[j].Val })
	names := make([]string, 0, len(keywords))
	for _, k := range keywords {
		names = append(names, fmt.Sprintf("%s(%g)", k.Name, k.Val))
	}
	fmt.Fprintln(w, headerStyle.Render("Keywords"))
	fmt.Fprintln(w, "  "+strings.Join(names, ", "))
}

func renderInstances(w io.Writer, instances []discovery.Instance) {
	if len(instances) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no SecondBrain instances found"))
		return
	}
	for _, inst := range instances {
		version := inst.Version
		if version == "" {
			version = "unknown"
		}
		fmt.Fprintf(w, "%s  %s  %s\n",
			titleStyle.Render(inst.Name),
			inst.Endpoint,
			dimStyle.Render("v"+version),
		)
	}
}
