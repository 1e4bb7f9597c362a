package cli

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/config"
	"github.com/matzehuels/flowlayout/pkg/flow"
	flowio "github.com/matzehuels/flowlayout/pkg/io"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/reducer"
	"github.com/matzehuels/flowlayout/pkg/render"
)

const (
	defaultFrames   = 30
	defaultInterval = 50 * time.Millisecond
	progressWidth   = 30
)

// animateCommand creates the animate command. It plays the transition
// between the layout of a flow and the layout after an action script,
// driving progress from 0 to 1.
func (c *CLI) animateCommand() *cobra.Command {
	var (
		actions  string
		cfgPath  string
		frames   int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "animate [flow]",
		Short: "Preview the layout transition caused by an action script",
		Long: `Preview the layout transition caused by an action script.

The layout of the input flow is computed first and used as the starting
point. Progress then advances from 0 to 1 and every element is shown at
its interpolated position.

Keys: space pause, r restart, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnimate(cmd.Context(), args[0], actions, cfgPath, frames, interval)
		},
	}

	cmd.Flags().StringVarP(&actions, "actions", "a", "", "action script (JSON or YAML)")
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "layout config file (TOML)")
	cmd.Flags().IntVar(&frames, "frames", defaultFrames, "number of animation frames")
	cmd.Flags().DurationVar(&interval, "interval", defaultInterval, "delay between frames")
	_ = cmd.MarkFlagRequired("actions")

	return cmd
}

func (c *CLI) runAnimate(ctx context.Context, input, actionsPath, cfgPath string, frames int, interval time.Duration) error {
	if frames < 1 {
		return fmt.Errorf("frames must be positive, got %d", frames)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	g, err := flowio.ReadFlowFile(input)
	if err != nil {
		return fmt.Errorf("load flow %s: %w", input, err)
	}
	actions, err := flowio.ReadActionsFile(actionsPath)
	if err != nil {
		return fmt.Errorf("load actions: %w", err)
	}

	m, err := newAnimateModel(g, actions, cfg, frames, interval)
	if err != nil {
		return err
	}
	c.Logger.Debug("starting animation", "elements", m.ctx.Graph.Len(), "frames", frames)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(animateModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

// =============================================================================
// animateModel
// =============================================================================

// frameMsg advances the animation by one frame. Frames of an older
// generation are dropped, so that pausing and restarting never leaves two
// tick chains running.
type frameMsg struct{ gen int }

// animateModel is the bubbletea model of the animate command.
type animateModel struct {
	ctx      render.Context
	step     float64
	interval time.Duration

	progress float64
	paused   bool
	gen      int
	maps     *layout.Maps
	err      error
}

// newAnimateModel reduces g by actions and prepares an animation from the
// layout of g to the layout of the reduced flow.
func newAnimateModel(g *flow.Graph, actions []reducer.Action, cfg layout.Config, frames int, interval time.Duration) (animateModel, error) {
	if err := cfg.Validate(); err != nil {
		return animateModel{}, err
	}
	prev, err := layout.Compute(g, cfg)
	if err != nil {
		return animateModel{}, fmt.Errorf("layout input: %w", err)
	}
	reduced, err := pipeline.Reduce(g, actions)
	if err != nil {
		return animateModel{}, err
	}
	m := animateModel{
		ctx:      render.Context{Graph: reduced, Config: cfg, PreviousLayout: prev},
		step:     1 / float64(frames),
		interval: interval,
	}
	m = m.at(0)
	return m, m.err
}

func (m animateModel) Init() tea.Cmd {
	return m.tick()
}

func (m animateModel) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return frameMsg{gen: gen} })
}

func (m animateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			m.gen++
			if !m.paused && m.progress < 1 {
				return m, m.tick()
			}
		case "r":
			m.paused = false
			m.gen++
			m = m.at(0)
			return m, m.tick()
		}
	case frameMsg:
		if msg.gen != m.gen || m.paused || m.progress >= 1 {
			return m, nil
		}
		m = m.at(math.Min(1, m.progress+m.step))
		if m.err != nil {
			return m, tea.Quit
		}
		if m.progress < 1 {
			return m, m.tick()
		}
	}
	return m, nil
}

// at returns m with its layout computed at progress p.
func (m animateModel) at(p float64) animateModel {
	m.progress = p
	m.maps, m.err = layout.Compute(m.ctx.Graph, m.ctx.Config, render.LayoutOptions(m.ctx, p)...)
	return m
}

func (m animateModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Flow Animation"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space pause  r restart  q quit"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error() + "\n")
		return b.String()
	}

	filled := int(math.Round(m.progress * progressWidth))
	bar := StyleHighlight.Render(strings.Repeat("█", filled)) + StyleDim.Render(strings.Repeat("░", progressWidth-filled))
	status := ""
	switch {
	case m.paused:
		status = StyleWarning.Render(" paused")
	case m.progress >= 1:
		status = StyleSuccess.Render(" done")
	}
	fmt.Fprintf(&b, "%s %s%s\n\n", bar, StyleNumber.Render(fmt.Sprintf("%3.0f%%", m.progress*100)), status)

	if m.maps == nil {
		return b.String()
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Element", "Kind", "X", "Y", "W", "H").
		Rows(m.rows()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", StyleDim.Render(fmt.Sprintf("  %.0f × %.0f", m.maps.Width, m.maps.Height)))

	return b.String()
}

// rows lists the elements in reading order.
func (m animateModel) rows() [][]string {
	ids := make([]string, 0, len(m.maps.Nodes))
	for id := range m.maps.Nodes {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		ia, ib := m.maps.Nodes[a], m.maps.Nodes[b]
		if ia.Y != ib.Y {
			return cmp.Compare(ia.Y, ib.Y)
		}
		if ia.X != ib.X {
			return cmp.Compare(ia.X, ib.X)
		}
		return strings.Compare(a, b)
	})

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		info := m.maps.Nodes[id]
		kind := ""
		if n, ok := m.ctx.Graph.Nodes[id]; ok {
			kind = n.Kind.String()
		}
		rows = append(rows, []string{
			id, kind,
			fmt.Sprintf("%.1f", info.X),
			fmt.Sprintf("%.1f", info.Y),
			fmt.Sprintf("%.1f", info.W),
			fmt.Sprintf("%.1f", info.H),
		})
	}
	return rows
}
