package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/scene"
	"github.com/linguamesh/constellation/pkg/session"
	"github.com/linguamesh/constellation/pkg/viewport"
)

// exploreOpts holds the command-line flags for the explore command.
type exploreOpts struct {
	tier    string // learner tier capping the layout boundary
	fresh   bool   // ignore the saved session and start over
	noSave  bool   // do not persist progress on exit
	courses string // override the courses directory
}

// newExploreCmd creates the explore command: an interactive terminal view of
// the constellation with pan, zoom, selection, and reveal. Progress is saved
// to the local session store and restored on the next run.
func newExploreCmd() *cobra.Command {
	opts := exploreOpts{tier: "white"}

	cmd := &cobra.Command{
		Use:   "explore [course-id]",
		Short: "Explore a course constellation interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.tier, "tier", opts.tier, "learner tier: white, yellow, orange, green, blue, brown, black")
	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "ignore saved progress and start over")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "do not persist progress on exit")
	cmd.Flags().StringVar(&opts.courses, "courses", "", "course scripts directory (default from config)")

	return cmd
}

// runExplore loads the course, restores any saved session, and runs the TUI.
func runExplore(ctx context.Context, courseID string, opts *exploreOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	if opts.courses != "" {
		cfg.Courses.Dir = opts.courses
	}

	tier, err := graph.ParseTier(opts.tier)
	if err != nil {
		return err
	}

	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	audio, err := newAudioSource(cfg, logger)
	if err != nil {
		printWarning("Clip service unavailable, continuing without audio: %v", err)
		audio = nil
	}

	s, err := scene.New(scene.Config{
		Display:    viewport.Size{Width: cfg.Render.Width, Height: cfg.Render.Height},
		PixelRatio: 1,
		Provider:   provider,
		Audio:      audio,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	if err := s.LoadCourse(ctx, courseID, tier); err != nil {
		return err
	}

	sessions, err := session.NewFileStore("")
	if err != nil {
		return err
	}
	sess, err := restoreSession(ctx, sessions, s, courseID, opts.fresh)
	if err != nil {
		return err
	}

	model := newExploreModel(s, sess)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	if m, ok := final.(exploreModel); ok && !opts.noSave {
		m.sess.Revealed = m.revealedIDs()
		if sel, ok := m.scene.Store().Selected(); ok {
			m.sess.Select(sel.ID)
		}
		if err := sessions.Set(ctx, m.sess); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		printSuccess("Saved progress: %d of %d words revealed",
			len(m.sess.Revealed), len(m.scene.Store().Nodes()))
	}
	return nil
}

// restoreSession loads the course's saved session, or creates a fresh one.
// Saved reveal state and selection are applied to the scene.
func restoreSession(ctx context.Context, store session.Store, s *scene.Scene, courseID string, fresh bool) (*session.Session, error) {
	id := session.CourseSessionID(courseID)
	if fresh {
		_ = store.Delete(ctx, id)
	}

	sess, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess, err = session.New(courseID, session.DefaultTTL)
		if err != nil {
			return nil, err
		}
		sess.ID = id
		return sess, nil
	}

	s.SetRevealed(sess.Revealed)
	if sess.Selected != "" {
		s.Store().Select(sess.Selected)
	}
	return sess, nil
}

// =============================================================================
// ExploreModel - Interactive constellation view
// =============================================================================

// Glyphs for terminal node rendering.
const (
	glyphStar     = "●"
	glyphGhost    = "·"
	glyphSelected = "◉"
)

// tierStyles colors revealed stars by tier, mirroring the raster palette.
var tierStyles = [graph.TierCount]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("255")), // white
	lipgloss.NewStyle().Foreground(lipgloss.Color("220")), // yellow
	lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // orange
	lipgloss.NewStyle().Foreground(lipgloss.Color("35")),  // green
	lipgloss.NewStyle().Foreground(lipgloss.Color("75")),  // blue
	lipgloss.NewStyle().Foreground(lipgloss.Color("130")), // brown
	lipgloss.NewStyle().Foreground(lipgloss.Color("245")), // black
}

var (
	ghostStyle    = lipgloss.NewStyle().Foreground(colorDim)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	statusStyle   = lipgloss.NewStyle().Foreground(colorGray)
)

// exploreModel is the bubbletea model for the interactive constellation.
type exploreModel struct {
	scene *scene.Scene
	sess  *session.Session

	cols int // terminal columns available for the sky
	rows int // terminal rows available for the sky

	order  []graph.Node // nodes in stable ID order, for tab-cycling
	cursor int          // index into order of the selection, -1 when none
}

// newExploreModel builds the model around a loaded scene.
func newExploreModel(s *scene.Scene, sess *session.Session) exploreModel {
	nodes := s.Store().Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	cursor := -1
	if sel, ok := s.Store().Selected(); ok {
		for i, n := range nodes {
			if n.ID == sel.ID {
				cursor = i
				break
			}
		}
	}

	return exploreModel{
		scene:  s,
		sess:   sess,
		cols:   80,
		rows:   22,
		order:  nodes,
		cursor: cursor,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "down", "left", "right", "+", "=", "-", "0":
			m.scene.Viewport().Key(key)
		case "tab", "n":
			m.cycle(1)
		case "shift+tab", "p":
			m.cycle(-1)
		case " ":
			m.revealSelected()
		case "c":
			m.scene.CenterOnSelected()
		}
	case tea.WindowSizeMsg:
		m.cols = msg.Width
		m.rows = msg.Height - 3
		if m.rows < 5 {
			m.rows = 5
		}
	}
	return m, nil
}

// cycle moves the selection through the stable node ordering.
func (m *exploreModel) cycle(step int) {
	if len(m.order) == 0 {
		return
	}
	m.cursor = ((m.cursor+step)%len(m.order) + len(m.order)) % len(m.order)
	m.scene.Store().Select(m.order[m.cursor].ID)
}

// revealSelected adds the selected node to the revealed set.
func (m *exploreModel) revealSelected() {
	sel, ok := m.scene.Store().Selected()
	if !ok {
		return
	}
	m.sess.Reveal(sel.ID)
	m.scene.SetRevealed(m.sess.Revealed)
}

// revealedIDs returns the scene's revealed set as a sorted slice.
func (m exploreModel) revealedIDs() []string {
	set := m.scene.Store().Revealed()
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m exploreModel) View() string {
	grid := make([]string, 0, m.rows+3)
	cells := make(map[[2]int]string, len(m.order))

	t := m.scene.Viewport().Transform()
	size := m.scene.Viewport().Size()
	revealed := m.scene.Store().Revealed()
	selID := ""
	if sel, ok := m.scene.Store().Selected(); ok {
		selID = sel.ID
	}

	for _, n := range m.order {
		p := t.Project(viewport.Point{X: n.X, Y: n.Y}, size)
		col := int(p.X / size.Width * float64(m.cols))
		row := int(p.Y / size.Height * float64(m.rows))
		if col < 0 || col >= m.cols || row < 0 || row >= m.rows {
			continue
		}

		_, isRevealed := revealed[n.ID]
		switch {
		case n.ID == selID:
			cells[[2]int{row, col}] = selectedStyle.Render(glyphSelected)
		case isRevealed:
			cells[[2]int{row, col}] = tierStyles[n.Tier].Render(glyphStar)
		default:
			cells[[2]int{row, col}] = ghostStyle.Render(glyphGhost)
		}
	}

	for row := 0; row < m.rows; row++ {
		var b strings.Builder
		for col := 0; col < m.cols; col++ {
			if cell, ok := cells[[2]int{row, col}]; ok {
				b.WriteString(cell)
			} else {
				b.WriteString(" ")
			}
		}
		grid = append(grid, b.String())
	}

	grid = append(grid, m.statusLine())
	grid = append(grid, statusStyle.Render("↑↓←→ pan  +/- zoom  0 reset  tab select  space reveal  c center  q quit"))
	return strings.Join(grid, "\n")
}

// statusLine summarizes the current view and selection.
func (m exploreModel) statusLine() string {
	t := m.scene.Viewport().Transform()
	status := fmt.Sprintf("%s  %d/%d revealed  %.1fx",
		m.scene.CourseID(), len(m.scene.Store().Revealed()), len(m.order), t.Scale)

	if sel, ok := m.scene.Store().Selected(); ok {
		label := sel.DisplayText()
		if sel.Gloss != "" {
			label += " (" + sel.Gloss + ")"
		}
		status += "  " + StyleHighlight.Render(label)
	}
	return StyleTitle.Render(status)
}
