package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	yes       key.Binding
	no        key.Binding
	quit      key.Binding
	logout    key.Binding
	tab       key.Binding
	search    key.Binding
	tags      key.Binding
	next      key.Binding
	prev      key.Binding
	more      key.Binding
	selectOne key.Binding
	remove    key.Binding
	bulk      key.Binding
	wishlist  key.Binding
	bulkWish  key.Binding
	status    key.Binding
	genre     key.Binding
	sort      key.Binding
	view      key.Binding
	refresh   key.Binding
	export    key.Binding
	add       key.Binding
	edit      key.Binding
	open      key.Binding
	role      key.Binding
	isbn      key.Binding
	nav       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		tab:       key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		tags:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tags")),
		next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
		prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev page")),
		more:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		selectOne: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		remove:    key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		bulk:      key.NewBinding(key.WithKeys("D", "X"), key.WithHelp("D", "delete selected")),
		wishlist:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wishlist")),
		bulkWish:  key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "wishlist selected")),
		status:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
		genre:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "genre")),
		sort:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
		view:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		export:    key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export csv")),
		add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		open:      key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "open in browser")),
		role:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "change role")),
		isbn:      key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "fill from isbn")),
		nav:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "go to")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nav, k.back, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.status, k.genre, k.sort, k.view},
		{k.selectOne, k.remove, k.bulk, k.wishlist},
		{k.nav, k.logout, k.quit},
	}
}
