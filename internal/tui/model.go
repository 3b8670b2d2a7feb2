package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/pipeline/internal/app"
	"github.com/hylla/pipeline/internal/board"
)

// Service is the board surface driven by the TUI.
type Service interface {
	Load(context.Context) (app.Snapshot, error)
	Snapshot(context.Context) (app.Snapshot, error)
	DragStart(context.Context, string, board.SourceKind) (app.DragResult, error)
	DragOver(context.Context, *board.Target) (app.DragResult, error)
	DragEnd(context.Context, *board.Target) (app.DragResult, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeItemInfo
)

// layout constants shared by rendering and mouse hit testing.
const (
	boardTop    = 2
	cardsOffset = 3
	cardRows    = 3
)

// mouseActivationDistance is how far, in cells, a press travels before it
// becomes a drag. Shorter presses are plain clicks.
const mouseActivationDistance = 2

// gesture actions reported back through boardMsg.
const (
	actionLoad   = "load"
	actionStart  = "start"
	actionOver   = "over"
	actionDrop   = "drop"
	actionCancel = "cancel"
)

// pointer tracks one mouse press from press to release.
type pointer struct {
	pressed    bool
	dragging   bool
	itemID     string
	startX     int
	startY     int
	sent       *board.Target
	pending    *board.Target
	hasPending bool
	released   bool
	dropTarget *board.Target
}

// Model is the bubbletea board model.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error
	status string

	help        help.Model
	keys        keyMap
	showHelpBar bool
	cardFields  CardFieldConfig

	snap           app.Snapshot
	loaded         bool
	selectedColumn int
	selectedItem   int
	mode           inputMode
	inflight       bool
	pointer        pointer

	updates    <-chan app.Snapshot
	serverErrs <-chan error
	serverErr  error
	copyText   func(string) error
	markdown   *markdownRenderer
}

// boardMsg carries the outcome of one service call.
type boardMsg struct {
	action  string
	snap    app.Snapshot
	result  app.DragResult
	focusID string
	err     error
}

// updateMsg carries a snapshot committed by another transport.
type updateMsg struct {
	snap   app.Snapshot
	closed bool
}

// serverErrMsg reports that the co-hosted server stopped. A nil err means it
// shut down cleanly.
type serverErrMsg struct {
	err error
}

// NewModel constructs the board model.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:         svc,
		status:      "loading...",
		help:        h,
		keys:        newKeyMap(),
		showHelpBar: true,
		cardFields:  DefaultCardFieldConfig(),
		copyText:    clipboard.WriteAll,
		markdown:    &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadBoard}
	if m.updates != nil {
		cmds = append(cmds, m.waitForUpdate())
	}
	if m.serverErrs != nil {
		cmds = append(cmds, m.waitForServerErr())
	}
	if len(cmds) == 1 {
		return m.loadBoard
	}
	return tea.Batch(cmds...)
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardMsg:
		return m.handleBoardMsg(msg)

	case updateMsg:
		if msg.closed {
			m.updates = nil
			return m, nil
		}
		if m.loaded && msg.snap.Revision > m.snap.Revision {
			m.applySnapshot(msg.snap, "")
			if msg.snap.LastOrigin != "" && msg.snap.LastOrigin != app.OriginTUI {
				m.status = "updated by " + msg.snap.LastOrigin
			}
		}
		return m, m.waitForUpdate()

	case serverErrMsg:
		m.serverErrs = nil
		if msg.err != nil {
			m.serverErr = msg.err
			m.status = "server stopped: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode == modeItemInfo {
			return m.handleInfoKey(msg)
		}
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// handleBoardMsg applies one service outcome.
func (m Model) handleBoardMsg(msg boardMsg) (tea.Model, tea.Cmd) {
	m.inflight = false
	if msg.err != nil {
		m.pointer = pointer{}
		if msg.action == actionLoad {
			m.err = msg.err
			return m, nil
		}
		m.status = msg.action + " failed: " + msg.err.Error()
		return m, nil
	}
	m.err = nil
	m.applySnapshot(msg.snap, msg.focusID)
	m.status = m.statusFor(msg)

	if msg.action == actionStart && m.pointer.dragging && msg.snap.ActiveID != m.pointer.itemID {
		m.pointer = pointer{}
	}
	cmd := m.flushPointer()
	return m, cmd
}

// statusFor summarizes one outcome for the status line.
func (m Model) statusFor(msg boardMsg) string {
	title := msg.focusID
	if item, ok := m.snap.Item(msg.focusID); ok {
		title = item.Title()
	}
	switch msg.action {
	case actionLoad:
		if m.serverErr != nil {
			return fmt.Sprintf("loaded %d items • server stopped: %v", len(m.snap.Items), m.serverErr)
		}
		return fmt.Sprintf("loaded %d items", len(m.snap.Items))
	case actionStart:
		if msg.result.State != board.StateDragging || msg.result.ActiveID != msg.focusID {
			return "drag ignored"
		}
		return "picked up " + title
	case actionOver:
		if !msg.result.Changed {
			return m.status
		}
		return "moving " + title + " in " + m.columnName(msg.focusID)
	case actionDrop:
		return "dropped " + title + " in " + m.columnName(msg.focusID)
	case actionCancel:
		return "drag cancelled"
	default:
		return m.status
	}
}

// columnName returns the name of the column holding itemID.
func (m Model) columnName(itemID string) string {
	item, ok := m.snap.Item(itemID)
	if !ok {
		return "-"
	}
	if column, ok := m.snap.Column(item.ColumnID); ok {
		return column.Name
	}
	return item.ColumnID
}

// applySnapshot replaces the board and keeps focus on focusID, or on the
// previously focused card when focusID is empty.
func (m *Model) applySnapshot(snap app.Snapshot, focusID string) {
	if focusID == "" {
		if snap.ActiveID != "" {
			focusID = snap.ActiveID
		} else if item, ok := m.focusedItem(); ok {
			focusID = item.ID
		}
	}
	m.snap = snap
	m.loaded = true
	if !m.focusItem(focusID) {
		m.clampSelections()
	}
}

// focusItem moves the selection onto itemID.
func (m *Model) focusItem(itemID string) bool {
	item, ok := m.snap.Item(itemID)
	if !ok {
		return false
	}
	for colIdx, column := range m.snap.Columns {
		if column.ID != item.ColumnID {
			continue
		}
		for idx, sibling := range m.snap.ItemsInColumn(column.ID) {
			if sibling.ID == itemID {
				m.selectedColumn = colIdx
				m.selectedItem = idx
				return true
			}
		}
	}
	return false
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.snap.Columns)-1)
	m.selectedItem = clamp(m.selectedItem, 0, len(m.currentColumnItems())-1)
}

// currentColumnItems returns the cards of the focused column.
func (m Model) currentColumnItems() []app.SnapshotItem {
	if len(m.snap.Columns) == 0 {
		return nil
	}
	column := m.snap.Columns[clamp(m.selectedColumn, 0, len(m.snap.Columns)-1)]
	return m.snap.ItemsInColumn(column.ID)
}

// focusedItem returns the focused card.
func (m Model) focusedItem() (app.SnapshotItem, bool) {
	items := m.currentColumnItems()
	if len(items) == 0 {
		return app.SnapshotItem{}, false
	}
	return items[clamp(m.selectedItem, 0, len(items)-1)], true
}

// dragging reports whether the board has an active drag.
func (m Model) dragging() bool {
	return m.snap.State == board.StateDragging && m.snap.ActiveID != ""
}

// tuiContext tags service calls as TUI gestures.
func tuiContext() context.Context {
	return app.WithGestureOrigin(context.Background(), app.GestureOrigin{Transport: app.OriginTUI})
}

// loadBoard loads the board from the catalog.
func (m Model) loadBoard() tea.Msg {
	snap, err := m.svc.Load(tuiContext())
	if err != nil {
		return boardMsg{action: actionLoad, err: err}
	}
	return boardMsg{action: actionLoad, snap: snap}
}

// waitForUpdate blocks on the next externally committed snapshot.
func (m Model) waitForUpdate() tea.Cmd {
	updates := m.updates
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return updateMsg{closed: true}
		}
		return updateMsg{snap: snap}
	}
}

// waitForServerErr waits for the co-hosted server to stop.
func (m Model) waitForServerErr() tea.Cmd {
	errs := m.serverErrs
	if errs == nil {
		return nil
	}
	return func() tea.Msg {
		return serverErrMsg{err: <-errs}
	}
}

// dispatch runs one gesture and reports the refreshed board. Only one gesture
// is in flight at a time so events reach the controller in order.
func (m *Model) dispatch(action, focusID string, fn func(context.Context) (app.DragResult, error)) tea.Cmd {
	m.inflight = true
	svc := m.svc
	return func() tea.Msg {
		ctx := tuiContext()
		res, err := fn(ctx)
		if err != nil {
			return boardMsg{action: action, focusID: focusID, err: err}
		}
		snap, err := svc.Snapshot(ctx)
		if err != nil {
			return boardMsg{action: action, focusID: focusID, err: err}
		}
		return boardMsg{action: action, snap: snap, result: res, focusID: focusID}
	}
}

// handleKey handles board-mode keys.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case m.err != nil:
		if key.Matches(msg, m.keys.reload) {
			m.err = nil
			m.status = "loading..."
			return m, m.loadBoard
		}
		return m, nil
	case m.inflight:
		return m, nil
	case m.dragging():
		return m.handleDragKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadBoard
	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn--
		m.clampSelections()
	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn++
		m.clampSelections()
	case key.Matches(msg, m.keys.moveUp):
		m.selectedItem--
		m.clampSelections()
	case key.Matches(msg, m.keys.moveDown):
		m.selectedItem++
		m.clampSelections()
	case key.Matches(msg, m.keys.pickUp):
		item, ok := m.focusedItem()
		if !ok {
			m.status = "no card selected"
			return m, nil
		}
		svc := m.svc
		cmd := m.dispatch(actionStart, item.ID, func(ctx context.Context) (app.DragResult, error) {
			return svc.DragStart(ctx, item.ID, board.SourceCard)
		})
		return m, cmd
	case key.Matches(msg, m.keys.itemInfo):
		if _, ok := m.focusedItem(); ok {
			m.mode = modeItemInfo
		}
	case key.Matches(msg, m.keys.copyID):
		m.copyFocusedID()
	}
	return m, nil
}

// handleDragKey implements the keyboard sensor while a drag is active.
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	svc := m.svc
	activeID := m.snap.ActiveID
	active, ok := m.snap.Item(activeID)
	if !ok {
		cmd := m.dispatch(actionCancel, activeID, func(ctx context.Context) (app.DragResult, error) {
			return svc.DragEnd(ctx, nil)
		})
		return m, cmd
	}
	siblings := m.snap.ItemsInColumn(active.ColumnID)
	idx := 0
	for i, sibling := range siblings {
		if sibling.ID == activeID {
			idx = i
			break
		}
	}
	colIdx := 0
	for i, column := range m.snap.Columns {
		if column.ID == active.ColumnID {
			colIdx = i
			break
		}
	}

	switch {
	case key.Matches(msg, m.keys.cancel):
		cmd := m.dispatch(actionCancel, activeID, func(ctx context.Context) (app.DragResult, error) {
			return svc.DragEnd(ctx, nil)
		})
		return m, cmd
	case key.Matches(msg, m.keys.drop):
		target := board.ColumnTarget(active.ColumnID)
		cmd := m.dispatch(actionDrop, activeID, func(ctx context.Context) (app.DragResult, error) {
			return svc.DragEnd(ctx, target)
		})
		return m, cmd
	case key.Matches(msg, m.keys.moveUp):
		if idx == 0 {
			return m, nil
		}
		cmd := m.hoverSibling(activeID, siblings[idx-1])
		return m, cmd
	case key.Matches(msg, m.keys.moveDown):
		if idx >= len(siblings)-1 {
			return m, nil
		}
		cmd := m.hoverSibling(activeID, siblings[idx+1])
		return m, cmd
	case key.Matches(msg, m.keys.moveLeft):
		if colIdx == 0 {
			return m, nil
		}
		cmd := m.hoverColumn(activeID, m.snap.Columns[colIdx-1].ID)
		return m, cmd
	case key.Matches(msg, m.keys.moveRight):
		if colIdx >= len(m.snap.Columns)-1 {
			return m, nil
		}
		cmd := m.hoverColumn(activeID, m.snap.Columns[colIdx+1].ID)
		return m, cmd
	}
	return m, nil
}

// hoverSibling moves the active card over a neighbour. The virtual pointer
// then settles on the active card itself, which now occupies that slot.
func (m *Model) hoverSibling(activeID string, sibling app.SnapshotItem) tea.Cmd {
	svc := m.svc
	return m.dispatch(actionOver, activeID, func(ctx context.Context) (app.DragResult, error) {
		res, err := svc.DragOver(ctx, board.CardTarget(sibling.ID, sibling.ColumnID))
		if err != nil {
			return res, err
		}
		if _, err := svc.DragOver(ctx, board.CardTarget(activeID, sibling.ColumnID)); err != nil {
			return res, err
		}
		return res, nil
	})
}

// hoverColumn reports empty space of another column under the active card.
func (m *Model) hoverColumn(activeID, columnID string) tea.Cmd {
	svc := m.svc
	return m.dispatch(actionOver, activeID, func(ctx context.Context) (app.DragResult, error) {
		return svc.DragOver(ctx, board.ColumnTarget(columnID))
	})
}

// handleInfoKey handles keys while the detail pane is open.
func (m Model) handleInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.itemInfo):
		m.mode = modeNone
	case key.Matches(msg, m.keys.copyID):
		m.copyFocusedID()
	}
	return m, nil
}

// copyFocusedID copies the focused card id to the clipboard.
func (m *Model) copyFocusedID() {
	item, ok := m.focusedItem()
	if !ok {
		m.status = "no card selected"
		return
	}
	if err := m.copyText(item.ID); err != nil {
		m.status = "clipboard error: " + err.Error()
		return
	}
	m.status = "copied " + item.ID
}

// handleMouseClick records a press on a card or focuses a column.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || m.mode != modeNone || m.dragging() || m.inflight {
		return m, nil
	}
	target := m.hitTest(msg.X, msg.Y)
	if target == nil {
		return m, nil
	}
	if target.Kind == board.TargetColumn {
		for idx, column := range m.snap.Columns {
			if column.ID == target.ID {
				m.selectedColumn = idx
			}
		}
		m.clampSelections()
		return m, nil
	}
	m.focusItem(target.ID)
	m.pointer = pointer{
		pressed: true,
		itemID:  target.ID,
		startX:  msg.X,
		startY:  msg.Y,
	}
	return m, nil
}

// handleMouseMotion activates a pending press and reports hovers.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.pointer.pressed {
		return m, nil
	}
	if !m.pointer.dragging {
		if distance(m.pointer.startX, m.pointer.startY, msg.X, msg.Y) < mouseActivationDistance {
			return m, nil
		}
		m.pointer.dragging = true
		m.pointer.pending = m.hitTest(msg.X, msg.Y)
		m.pointer.hasPending = true
		itemID := m.pointer.itemID
		svc := m.svc
		cmd := m.dispatch(actionStart, itemID, func(ctx context.Context) (app.DragResult, error) {
			return svc.DragStart(ctx, itemID, board.SourceCard)
		})
		return m, cmd
	}
	m.pointer.pending = m.hitTest(msg.X, msg.Y)
	m.pointer.hasPending = true
	cmd := m.flushPointer()
	return m, cmd
}

// handleMouseRelease drops the dragged card, or cancels outside the board.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.pointer.dragging {
		m.pointer = pointer{}
		return m, nil
	}
	m.pointer.released = true
	m.pointer.dropTarget = m.hitTest(msg.X, msg.Y)
	cmd := m.flushPointer()
	return m, cmd
}

// flushPointer sends the next queued pointer event once no gesture is in flight.
func (m *Model) flushPointer() tea.Cmd {
	p := &m.pointer
	if !p.dragging || m.inflight {
		return nil
	}
	svc := m.svc
	itemID := p.itemID
	if p.released {
		target := p.dropTarget
		action := actionDrop
		if target == nil {
			action = actionCancel
		}
		m.pointer = pointer{}
		return m.dispatch(action, itemID, func(ctx context.Context) (app.DragResult, error) {
			return svc.DragEnd(ctx, target)
		})
	}
	if !p.hasPending {
		return nil
	}
	p.hasPending = false
	if sameTarget(p.pending, p.sent) {
		return nil
	}
	target := p.pending
	p.sent = target
	return m.dispatch(actionOver, itemID, func(ctx context.Context) (app.DragResult, error) {
		return svc.DragOver(ctx, target)
	})
}

// hitTest maps a cell to the droppable under it, or nil outside every column.
func (m Model) hitTest(x, y int) *board.Target {
	if len(m.snap.Columns) == 0 || x < 0 || y < boardTop {
		return nil
	}
	colIdx := x / m.columnStride()
	if colIdx >= len(m.snap.Columns) {
		return nil
	}
	rel := y - boardTop
	if rel >= m.columnHeight() {
		return nil
	}
	column := m.snap.Columns[colIdx]
	if rel < cardsOffset {
		return board.ColumnTarget(column.ID)
	}
	items := m.snap.ItemsInColumn(column.ID)
	row := rel - cardsOffset + m.scrollTop(colIdx, len(items))
	if idx := row / cardRows; idx < len(items) {
		return board.CardTarget(items[idx].ID, column.ID)
	}
	return board.ColumnTarget(column.ID)
}

// sameTarget compares two optional targets.
func sameTarget(a, b *board.Target) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// distance returns the chebyshev distance between two cells.
func distance(x1, y1, x2, y2 int) int {
	dx, dy := x2-x1, y2-y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}

// View handles view.
func (m Model) View() tea.View {
	return newView(m.render())
}

// render draws the full screen.
func (m Model) render() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready || !m.loaded {
		return "loading..."
	}

	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	accent := lipgloss.Color("212")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("pipeline") + statusStyle.Render(fmt.Sprintf("  %d items • rev %d", len(m.snap.Items), m.snap.Revision))
	if m.dragging() {
		title := m.snap.ActiveID
		if item, ok := m.snap.Item(m.snap.ActiveID); ok {
			title = item.Title()
		}
		header += lipgloss.NewStyle().Foreground(accent).Bold(true).Render("  [dragging " + truncate(title, 32) + "]")
	}
	if m.serverErr != nil {
		header += lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true).Render("  [server down]")
	}

	columnViews := make([]string, 0, len(m.snap.Columns))
	for colIdx, column := range m.snap.Columns {
		columnViews = append(columnViews, m.renderColumn(colIdx, column, accent, muted, dim))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)

	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	if m.showHelpBar || m.help.ShowAll {
		helpBubble := m.help
		helpBubble.SetWidth(max(0, m.width-2))
		helpLine := lipgloss.NewStyle().
			Foreground(muted).
			BorderTop(true).
			BorderForeground(dim).
			Padding(0, 1).
			Width(max(0, m.width)).
			Render(helpBubble.View(m.keys))
		if m.height > 0 {
			content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
		}
		content += "\n" + helpLine
	}

	if m.mode == modeItemInfo {
		if overlay := m.renderItemInfo(accent, dim); overlay != "" {
			height := lipgloss.Height(content)
			if m.height > 0 {
				height = m.height
			}
			content = overlayOnContent(content, overlay, max(1, m.width), max(1, height))
		}
	}
	return content
}

// newView wraps content in the board view settings.
func newView(content string) tea.View {
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// columnStyle returns the box style of one column.
func (m Model) columnStyle(border color.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		MarginRight(1).
		Width(m.columnWidth())
}

// renderColumn renders one column with its cards.
func (m Model) renderColumn(colIdx int, column app.SnapshotColumn, accent, muted, dim color.Color) string {
	tag := columnColor(column)
	items := m.snap.ItemsInColumn(column.ID)
	textWidth := max(1, m.columnWidth()-6)

	headerLine := lipgloss.NewStyle().Foreground(tag).Render("●") + " " +
		lipgloss.NewStyle().Bold(true).Render(truncate(column.Name, textWidth-6)) +
		lipgloss.NewStyle().Foreground(muted).Render(fmt.Sprintf(" (%d)", len(items)))

	selectedStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237")).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(muted)

	cardLines := make([]string, 0, len(items)*cardRows)
	if len(items) == 0 {
		cardLines = append(cardLines, lipgloss.NewStyle().Foreground(dim).Render("(empty)"))
	}
	for idx, item := range items {
		selected := colIdx == m.selectedColumn && idx == m.selectedItem
		active := item.ID == m.snap.ActiveID && m.dragging()
		prefix := "  "
		switch {
		case active:
			prefix = "≡ "
		case selected:
			prefix = "│ "
		}
		title := prefix + truncate(item.Title(), textWidth)
		switch {
		case active:
			title = activeStyle.Render(title)
		case selected:
			title = selectedStyle.Render(title)
		}
		cardLines = append(cardLines, title, "  "+subStyle.Render(truncate(m.cardMeta(item), textWidth)), "")
	}

	window := m.cardWindowHeight()
	top := m.scrollTop(colIdx, len(items))
	if len(cardLines) > window {
		end := min(len(cardLines), top+window)
		cardLines = cardLines[top:end]
	}
	lines := append([]string{headerLine, ""}, cardLines...)
	content := fitLines(strings.Join(lines, "\n"), max(1, m.columnHeight()-2))

	border := dim
	if colIdx == m.selectedColumn {
		border = tag
	}
	return m.columnStyle(border).Render(content)
}

// renderItemInfo renders the detail pane of the focused card.
func (m Model) renderItemInfo(accent, dim color.Color) string {
	item, ok := m.focusedItem()
	if !ok {
		return ""
	}
	columnName := item.ColumnID
	if column, ok := m.snap.Column(item.ColumnID); ok {
		columnName = column.Name
	}
	width := max(30, min(80, m.width-8))
	body := m.markdown.render(itemMarkdown(item, columnName), width-4)
	footer := lipgloss.NewStyle().Foreground(dim).Render("esc close • y copy id")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width).
		Render(body + "\n\n" + footer)
}

// columnColor returns the tag colour of a column.
func columnColor(column app.SnapshotColumn) color.Color {
	if column.Color == "" {
		return lipgloss.Color("62")
	}
	return lipgloss.Color(column.Color)
}

// columnWidth returns column width.
func (m Model) columnWidth() int {
	if len(m.snap.Columns) == 0 || m.width <= 0 {
		return 28
	}
	// Per-column overhead: left/right border (2), horizontal padding (2), margin-right (1)
	const colOverhead = 5
	w := (m.width - len(m.snap.Columns)*colOverhead) / len(m.snap.Columns)
	return clamp(w, 20, 40)
}

// columnStride returns the rendered width of one column including its margin.
func (m Model) columnStride() int {
	return max(1, lipgloss.Width(m.columnStyle(lipgloss.Color("239")).Render("")))
}

// columnHeight returns the rendered height of one column including borders.
func (m Model) columnHeight() int {
	// header, spacer, status, help border and help line
	h := m.height - boardTop - 3
	if h < 10 {
		return 10
	}
	return h
}

// cardWindowHeight returns the number of card lines visible in one column.
func (m Model) cardWindowHeight() int {
	return max(1, m.columnHeight()-2-2)
}

// scrollTop returns the first visible card line of one column. Only the
// focused column scrolls, keeping its selected card in view.
func (m Model) scrollTop(colIdx, count int) int {
	if colIdx != m.selectedColumn {
		return 0
	}
	window := m.cardWindowHeight()
	selEnd := m.selectedItem*cardRows + cardRows - 2
	top := 0
	if selEnd >= window {
		top = selEnd - window + 1
	}
	return clamp(top, 0, max(0, count*cardRows-window))
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centered).X(0).Y(0).Z(10)
	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit == 1 {
		return string(rs[:1])
	}
	return string(rs[:limit-1]) + "…"
}
