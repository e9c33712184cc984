package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"

	"github.com/tayloree/order-catalog/internal/api"
	"github.com/tayloree/order-catalog/internal/catalog"
	"github.com/tayloree/order-catalog/internal/display"
	"github.com/tayloree/order-catalog/internal/filter"
)

const (
	minTUIWidth  = 92
	minTUIHeight = 24

	detailPurchaseRows = 12
)

var (
	tuiHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tuiMetaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiHintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiSparkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	tuiTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tuiSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
)

type tuiLoadConfig struct {
	ctx         context.Context
	load        func(context.Context) (*catalog.Snapshot, error)
	initialOpts filter.Options
}

type tuiDataLoadedMsg struct {
	snap *catalog.Snapshot
}

type tuiDataLoadErrMsg struct {
	err error
}

type tuiFocus int

const (
	tuiFocusList tuiFocus = iota
	tuiFocusDetail
)

// tuiSectionItem is a category header in the product list.
type tuiSectionItem struct {
	name    string
	count   int
	ordinal int
}

func (s tuiSectionItem) FilterValue() string { return strings.ToLower(s.name) }
func (s tuiSectionItem) Title() string       { return fmt.Sprintf("%d. %s", s.ordinal, s.name) }
func (s tuiSectionItem) Description() string {
	return fmt.Sprintf("Category • %d products", s.count)
}

type tuiProductItem struct {
	group       catalog.Group
	section     string
	description string
	filterValue string
}

func (p tuiProductItem) FilterValue() string { return p.filterValue }
func (p tuiProductItem) Title() string       { return p.group.Key }
func (p tuiProductItem) Description() string { return p.description }

type catalogTUIModel struct {
	loading  bool
	spinner  spinner.Model
	loadCmd  tea.Cmd
	fatalErr error

	snap *catalog.Snapshot

	opts        filter.Options
	initialOpts filter.Options

	sortChoices     []filter.Column
	sortIndex       int
	categoryChoices []string
	categoryIndex   int
	limitChoices    []int
	limitIndex      int

	list   list.Model
	detail viewport.Model

	focus      tuiFocus
	showHelp   bool
	selectedID string

	sectionStarts   []int
	visibleProducts int

	width, height   int
	bodyHeight      int
	listPaneWidth   int
	detailPaneWidth int
	tooSmall        bool
}

func newLoadingCatalogTUIModel(cfg tuiLoadConfig) catalogTUIModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(1)

	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Products"
	lst.SetStatusBarItemName("item", "items")
	lst.SetShowStatusBar(true)
	lst.SetFilteringEnabled(true)
	lst.SetShowHelp(false)
	lst.SetShowPagination(true)
	lst.DisableQuitKeybindings()

	detail := viewport.New(0, 0)
	detail.KeyMap.PageDown.SetKeys("f", "pgdown")
	detail.KeyMap.PageUp.SetKeys("b", "pgup")
	detail.KeyMap.HalfPageDown.SetKeys("d")
	detail.KeyMap.HalfPageUp.SetKeys("u")

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return catalogTUIModel{
		loading:     true,
		spinner:     spin,
		loadCmd:     loadTUIDataCmd(cfg),
		initialOpts: cfg.initialOpts,
		opts:        cfg.initialOpts,
		list:        lst,
		detail:      detail,
		focus:       tuiFocusList,
	}
}

func loadTUIDataCmd(cfg tuiLoadConfig) tea.Cmd {
	return func() tea.Msg {
		snap, err := cfg.load(cfg.ctx)
		if err != nil {
			return tuiDataLoadErrMsg{err: err}
		}
		return tuiDataLoadedMsg{snap: snap}
	}
}

func (m catalogTUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd)
}

func (m catalogTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tuiDataLoadedMsg:
		m.loading = false
		m.snap = msg.snap
		if err := resolveCategoryFlag(m.snap, &m.initialOpts); err != nil {
			m.fatalErr = err
			return m, tea.Quit
		}
		m.opts = m.initialOpts
		m.initializeInlineChoices()
		m.applyCurrentFilters(true)
		m.resize()
		return m, nil

	case tuiDataLoadErrMsg:
		m.loading = false
		m.fatalErr = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		if keyMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	if m.loading {
		return m, nil
	}

	if isKey {
		filtering := m.list.FilterState() == list.Filtering
		key := keyMsg.String()

		if !filtering {
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				if m.focus == tuiFocusList {
					m.focus = tuiFocusDetail
				} else {
					m.focus = tuiFocusList
				}
				return m, nil
			case "esc":
				if m.focus == tuiFocusDetail {
					m.focus = tuiFocusList
					return m, nil
				}
			case "?":
				m.showHelp = !m.showHelp
				m.resize()
				return m, nil
			case "s":
				m.cycleSort()
				return m, nil
			case "o":
				m.opts.Direction = m.opts.Direction.Toggle()
				m.applyCurrentFilters(false)
				return m, nil
			case "c":
				m.cycleCategory()
				return m, nil
			case "l":
				m.cycleLimit()
				return m, nil
			case "r":
				m.opts = m.initialOpts
				m.syncChoiceIndexesFromOptions()
				m.applyCurrentFilters(false)
				return m, nil
			case "]", "[":
				if m.list.IsFiltered() {
					return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps.")
				}
				delta := 1
				if key == "[" {
					delta = -1
				}
				m.jumpSection(delta)
				return m, nil
			}

			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				if m.list.IsFiltered() {
					return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps.")
				}
				m.jumpToSection(int(key[0] - '1'))
				return m, nil
			}

			if m.focus == tuiFocusDetail {
				var cmd tea.Cmd
				m.detail, cmd = m.detail.Update(msg)
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshDetail(false)
	return m, cmd
}

func (m catalogTUIModel) View() string {
	if m.loading {
		return m.loadingView()
	}
	if m.width == 0 || m.height == 0 {
		return tuiMetaStyle.Render("Loading interface...")
	}
	if m.tooSmall {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(
				fmt.Sprintf(
					"Terminal too small (%dx%d).\nResize to at least %dx%d for the two-pane catalog browser.",
					m.width, m.height, minTUIWidth, minTUIHeight,
				),
			)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		m.bodyView(),
		m.footerView(),
	)
}

func (m catalogTUIModel) loadingView() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	lines := []string{
		tuiHeaderStyle.Render("ordercat tui"),
		tuiMetaStyle.Render("Preparing interactive interface..."),
		"",
		fmt.Sprintf("%s Loading purchase orders", m.spinner.View()),
		tuiHintStyle.Render("Tip: press q to cancel."),
	}
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (m *catalogTUIModel) resize() {
	if m.width == 0 || m.height == 0 || m.loading {
		return
	}

	m.tooSmall = m.width < minTUIWidth || m.height < minTUIHeight
	if m.tooSmall {
		return
	}

	headerH := 3
	footerH := 2
	if m.showHelp {
		footerH = 6
	}
	m.bodyHeight = maxInt(8, m.height-headerH-footerH-1)

	listWidth := maxInt(40, int(float64(m.width)*0.45))
	if listWidth > m.width-42 {
		listWidth = m.width / 2
	}
	detailWidth := m.width - listWidth - 1
	if detailWidth < 36 {
		detailWidth = 36
		listWidth = m.width - detailWidth - 1
	}

	m.listPaneWidth = listWidth
	m.detailPaneWidth = detailWidth

	panelInnerHeight := maxInt(6, m.bodyHeight-2)
	m.list.SetSize(maxInt(24, listWidth-4), panelInnerHeight)
	m.detail.Width = maxInt(24, detailWidth-4)
	m.detail.Height = panelInnerHeight
	m.refreshDetail(false)
}

func (m catalogTUIModel) headerView() string {
	focus := "list"
	if m.focus == tuiFocusDetail {
		focus = "detail"
	}

	top := fmt.Sprintf("ordercat tui  |  %d purchases, %d dropped", m.snap.ItemCount(), m.snap.Dropped)
	bottom := fmt.Sprintf(
		"products: %d visible / %d total  |  view: %s  |  focus: %s",
		m.visibleProducts, m.snap.Len(), m.activeFilterSummary(), focus,
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(tuiHeaderStyle.Render(top) + "\n" + tuiMetaStyle.Render(bottom))
}

func (m catalogTUIModel) bodyView() string {
	listBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1)
	detailBorder := listBorder

	if m.focus == tuiFocusList {
		listBorder = listBorder.BorderForeground(lipgloss.Color("86"))
	} else {
		detailBorder = detailBorder.BorderForeground(lipgloss.Color("86"))
	}

	left := listBorder.
		Width(m.listPaneWidth).
		Height(m.bodyHeight).
		Render(m.list.View())
	right := detailBorder.
		Width(m.detailPaneWidth).
		Height(m.bodyHeight).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m catalogTUIModel) footerView() string {
	base := "Tab switch pane • / fuzzy filter • c category • s sort • o order • l limit • r reset • [/] section jump • q quit"
	if m.focus == tuiFocusDetail {
		base = "Detail: j/k or ↑/↓ scroll • u/d half-page • b/f page • esc list • ? help • q quit"
	}

	if !m.showHelp {
		return lipgloss.NewStyle().Padding(0, 1).Render(tuiHintStyle.Render(base))
	}

	lines := []string{
		"Key Help",
		"list pane: ↑/↓ or j/k move • / fuzzy filter • c category • s sort column • o asc/desc • l limit",
		"section jumps: ] next category • [ previous category • 1..9 numbered category",
		"global: tab switch pane • esc list • r reset view • ? toggle help • q quit • ctrl+c force quit",
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(tuiHintStyle.Render(strings.Join(lines, "\n")))
}

func (m *catalogTUIModel) initializeInlineChoices() {
	m.sortChoices = append([]filter.Column(nil), filter.Columns...)
	m.categoryChoices = m.snap.Categories()
	m.limitChoices = buildLimitChoices(m.opts.Limit)
	m.syncChoiceIndexesFromOptions()
}

func (m *catalogTUIModel) syncChoiceIndexesFromOptions() {
	m.sortIndex = indexOfColumn(m.sortChoices, m.opts.Sort)
	if m.sortIndex < 0 {
		m.sortIndex = 0
	}
	m.opts.Sort = m.sortChoices[m.sortIndex]
	if m.opts.Direction == "" {
		m.opts.Direction = filter.Asc
	}

	m.categoryIndex = indexOfString(m.categoryChoices, m.opts.Category)
	if m.categoryIndex < 0 {
		m.categoryIndex = 0
	}
	m.opts.Category = m.categoryChoices[m.categoryIndex]

	m.limitIndex = indexOfInt(m.limitChoices, m.opts.Limit)
	if m.limitIndex < 0 {
		m.limitIndex = 0
		m.opts.Limit = m.limitChoices[m.limitIndex]
	}
}

func (m *catalogTUIModel) cycleSort() {
	if len(m.sortChoices) == 0 {
		return
	}
	m.sortIndex = (m.sortIndex + 1) % len(m.sortChoices)
	m.opts.Sort = m.sortChoices[m.sortIndex]
	m.applyCurrentFilters(false)
}

func (m *catalogTUIModel) cycleCategory() {
	if len(m.categoryChoices) == 0 {
		return
	}
	m.categoryIndex = (m.categoryIndex + 1) % len(m.categoryChoices)
	m.opts.Category = m.categoryChoices[m.categoryIndex]
	m.applyCurrentFilters(false)
}

func (m *catalogTUIModel) cycleLimit() {
	if len(m.limitChoices) == 0 {
		return
	}
	m.limitIndex = (m.limitIndex + 1) % len(m.limitChoices)
	m.opts.Limit = m.limitChoices[m.limitIndex]
	m.applyCurrentFilters(false)
}

func (m catalogTUIModel) activeFilterSummary() string {
	parts := []string{
		"category:" + m.opts.Category,
		fmt.Sprintf("sort:%s %s", m.opts.Sort, m.opts.Direction),
	}
	if m.opts.Query != "" {
		parts = append(parts, "query:"+m.opts.Query)
	}
	if m.opts.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit:%d", m.opts.Limit))
	}
	if fuzzy := strings.TrimSpace(m.list.FilterValue()); fuzzy != "" {
		parts = append(parts, "fuzzy:"+fuzzy)
	}
	return strings.Join(parts, ", ")
}

func (m *catalogTUIModel) applyCurrentFilters(resetSelection bool) {
	currentID := m.selectedID
	groups := filter.View(m.snap.Groups(), m.opts)
	m.visibleProducts = len(groups)

	items, starts := buildSectionedListItems(groups, m.snap.Categories())
	m.sectionStarts = starts

	m.list.Title = fmt.Sprintf("Products • %d visible", m.visibleProducts)
	m.list.SetItems(items)

	target := -1
	if !resetSelection && currentID != "" {
		target = findItemIndexByID(items, currentID)
	}
	if target < 0 {
		target = firstProductIndexFrom(items, 0)
	}
	if target < 0 && len(items) > 0 {
		target = 0
	}
	if target >= 0 {
		m.list.Select(target)
	}

	m.refreshDetail(true)
}

func (m *catalogTUIModel) refreshDetail(resetScroll bool) {
	var content string
	nextID := ""

	if selected := m.list.SelectedItem(); selected != nil {
		switch item := selected.(type) {
		case tuiProductItem:
			items, _ := m.snap.Details(item.group.Key)
			content = renderProductDetailContent(item.group, items, m.detail.Width)
			nextID = stableIDForItem(item)
		case tuiSectionItem:
			content = m.renderSectionDetail(item)
			nextID = stableIDForItem(item)
		}
	}
	if content == "" {
		content = "No products match the current view.\n\nPress r to reset or c to change category."
	}

	if resetScroll || nextID != m.selectedID {
		m.detail.GotoTop()
	}
	m.selectedID = nextID
	m.detail.SetContent(content)
}

func (m catalogTUIModel) renderSectionDetail(section tuiSectionItem) string {
	lines := []string{
		tuiSectionStyle.Render(fmt.Sprintf("Category %d: %s", section.ordinal, section.name)),
		tuiMetaStyle.Render(fmt.Sprintf("%d products in this view", section.count)),
		"",
		tuiMetaStyle.Render("Jump keys:"),
		"- `]` next category, `[` previous category",
		"- `1..9` jump directly to a numbered category",
	}

	preview := m.sectionPreviewTitles(section.name, 5)
	if len(preview) > 0 {
		lines = append(lines, "", tuiMetaStyle.Render("Preview:"))
		for _, title := range preview {
			lines = append(lines, "• "+title)
		}
	}
	return strings.Join(lines, "\n")
}

func (m catalogTUIModel) sectionPreviewTitles(section string, max int) []string {
	out := make([]string, 0, max)
	for _, item := range m.list.Items() {
		product, ok := item.(tuiProductItem)
		if !ok || product.section != section {
			continue
		}
		out = append(out, product.group.Key)
		if len(out) >= max {
			break
		}
	}
	return out
}

func (m *catalogTUIModel) jumpToSection(index int) {
	if index < 0 || index >= len(m.sectionStarts) {
		return
	}
	target := firstProductIndexFrom(m.list.Items(), m.sectionStarts[index])
	if target < 0 {
		target = m.sectionStarts[index]
	}
	m.list.Select(target)
	m.refreshDetail(true)
}

func (m *catalogTUIModel) jumpSection(delta int) {
	if len(m.sectionStarts) == 0 {
		return
	}
	next := m.currentSectionIndex() + delta
	if next < 0 {
		next = len(m.sectionStarts) - 1
	}
	if next >= len(m.sectionStarts) {
		next = 0
	}
	m.jumpToSection(next)
}

func (m catalogTUIModel) currentSectionIndex() int {
	cursor := m.list.GlobalIndex()
	current := 0
	for i, start := range m.sectionStarts {
		if start > cursor {
			break
		}
		current = i
	}
	return current
}

// buildSectionedListItems groups the view under category headers. Headers
// follow categoryOrder; products keep their view order inside a section.
func buildSectionedListItems(groups []catalog.Group, categoryOrder []string) (items []list.Item, starts []int) {
	if len(groups) == 0 {
		return nil, nil
	}

	bySection := make(map[string][]catalog.Group)
	order := make([]string, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		if c != catalog.AllCategories {
			order = append(order, c)
		}
	}
	for _, g := range groups {
		c := g.Summary.Category
		if _, ok := bySection[c]; !ok && indexOfString(order, c) < 0 {
			order = append(order, c)
		}
		bySection[c] = append(bySection[c], g)
	}

	items = make([]list.Item, 0, len(groups)+len(bySection))
	starts = make([]int, 0, len(bySection))
	for _, name := range order {
		members := bySection[name]
		if len(members) == 0 {
			continue
		}
		starts = append(starts, len(items))
		items = append(items, tuiSectionItem{name: name, count: len(members), ordinal: len(starts)})
		for _, g := range members {
			items = append(items, buildTUIProductItem(g, name))
		}
	}
	return items, starts
}

func buildTUIProductItem(g catalog.Group, section string) tuiProductItem {
	s := g.Summary
	desc := fmt.Sprintf("%s  •  %d purchases  •  last %s", display.Money(s.LastUnitPrice), s.Count, s.LastDateDisplay)
	fold := cases.Fold()
	return tuiProductItem{
		group:       g,
		section:     section,
		description: desc,
		filterValue: fold.String(s.GroupKey + " " + section),
	}
}

func renderProductDetailContent(g catalog.Group, items []catalog.Item, width int) string {
	maxWidth := maxInt(24, width)
	s := g.Summary
	chart := catalog.ChartOf(g)

	values := make([]float64, len(chart.Points))
	for i, p := range chart.Points {
		values[i] = p.Y
	}

	lines := []string{
		tuiTitleStyle.Render(wrapText(s.GroupKey, maxWidth)),
		tuiMetaStyle.Render(s.Category),
		"",
		fmt.Sprintf("%s %s", tuiMetaStyle.Render("Last unit price:"), tuiValueStyle.Render(display.Money(s.LastUnitPrice))),
		fmt.Sprintf("%s %d", tuiMetaStyle.Render("Purchases:"), s.Count),
		fmt.Sprintf("%s %s - %s", tuiMetaStyle.Render("Bought:"), s.FirstDateDisplay, s.LastDateDisplay),
		"",
		tuiSparkStyle.Render(display.Sparkline(values)),
		display.TrendSummary(chart),
		"",
		tuiMetaStyle.Render("Recent purchases:"),
	}

	for i, item := range items {
		if i == detailPurchaseRows {
			lines = append(lines, tuiMutedStyle.Render(fmt.Sprintf("… %d more", len(items)-i)))
			break
		}
		line := fmt.Sprintf("%s  %s  x%s", strings.TrimSpace(api.Deref(item.OrderDate)), display.Money(item.UnitPrice), formatCount(item.ProductQuantity))
		if item.Flavor != "" {
			line += "  " + tuiMutedStyle.Render(item.Flavor)
		}
		lines = append(lines, line)
	}

	if len(items) > 0 {
		if url := strings.TrimSpace(api.Deref(items[0].ProductURL)); url != "" {
			lines = append(lines, "", tuiMutedStyle.Render("Product URL:"), tuiMutedStyle.Render(wrapText(url, maxWidth)))
		}
	}
	return strings.Join(lines, "\n")
}

func formatCount(q *float64) string {
	v, ok := api.Float(q)
	if !ok {
		return "?"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width < 12 {
		width = 12
	}

	line := words[0]
	lines := make([]string, 0, len(words)/6+1)
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func buildLimitChoices(current int) []int {
	values := []int{0, 10, 25, 50, 100}
	if current > 0 && indexOfInt(values, current) < 0 {
		values = append(values, current)
		for i := len(values) - 1; i > 0 && values[i] < values[i-1]; i-- {
			values[i], values[i-1] = values[i-1], values[i]
		}
	}
	return values
}

func indexOfString(values []string, target string) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}

func indexOfColumn(values []filter.Column, target filter.Column) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}

func indexOfInt(values []int, target int) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}

func findItemIndexByID(items []list.Item, stableID string) int {
	for i, item := range items {
		if stableIDForItem(item) == stableID {
			return i
		}
	}
	return -1
}

func firstProductIndexFrom(items []list.Item, start int) int {
	for i := start; i < len(items); i++ {
		if _, ok := items[i].(tuiProductItem); ok {
			return i
		}
	}
	return -1
}

func stableIDForItem(item list.Item) string {
	switch value := item.(type) {
	case tuiProductItem:
		return "product:" + value.group.Key
	case tuiSectionItem:
		return "section:" + value.name
	default:
		return ""
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
