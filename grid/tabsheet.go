package grid

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/fulldump/labgrid/logger"
)

const (
	DefaultPrimaryCaption = "Primary Action"
	DefaultFeatureCaption = "Main Feature"

	// removeAllLimit bounds RemoveAllTabs so a tab that can never be removed
	// does not spin forever.
	removeAllLimit = 100
)

// Tab is a labelled grid inside a TabSheet. The badge follows the item count
// of the grid while the tab belongs to a sheet.
type Tab struct {
	id         string
	label      string
	controller Controller

	mutex        sync.Mutex
	badge        int
	subscription *Subscription
}

func NewTab(label string, controller Controller) *Tab {
	return &Tab{
		id:         uuid.NewString(),
		label:      label,
		controller: controller,
	}
}

func (t *Tab) ID() string {
	return t.id
}

func (t *Tab) Label() string {
	return t.label
}

func (t *Tab) Controller() Controller {
	return t.controller
}

func (t *Tab) Badge() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.badge
}

func (t *Tab) setBadge(n int) {
	t.mutex.Lock()
	t.badge = n
	t.mutex.Unlock()
}

// GridOf returns the typed grid behind tab.
func GridOf[T, F any](tab *Tab) (*Grid[T, F], bool) {
	if tab == nil {
		return nil, false
	}
	g, ok := tab.controller.(*Grid[T, F])
	return g, ok
}

type clickEvent struct {
	tab  *Tab
	errs []error
}

type TabAction func(tab *Tab) error

type Button struct {
	Caption string `json:"caption"`
	Visible bool   `json:"visible"`
}

// TabSheet is an ordered set of tabs sharing a primary and a feature button.
// Clicking a button runs the actions registered for every tab, in tab order.
type TabSheet struct {
	mutex    sync.Mutex
	tabs     []*Tab
	selected int // -1 when empty

	primary        Button
	feature        Button
	primaryActions map[*Tab]*listeners[*clickEvent]
	featureActions map[*Tab]*listeners[*clickEvent]

	// BeforeRemove can veto the removal of a single tab.
	BeforeRemove func(tab *Tab) error
}

func NewTabSheet() *TabSheet {
	return &TabSheet{
		selected:       -1,
		primary:        Button{Caption: DefaultPrimaryCaption, Visible: true},
		feature:        Button{Caption: DefaultFeatureCaption, Visible: true},
		primaryActions: map[*Tab]*listeners[*clickEvent]{},
		featureActions: map[*Tab]*listeners[*clickEvent]{},
	}
}

func (s *TabSheet) AddTab(tab *Tab) error {
	return s.AddTabAt(-1, tab)
}

// AddTabAt inserts tab at index. An index out of range appends.
func (s *TabSheet) AddTabAt(index int, tab *Tab) error {
	if tab == nil || tab.controller == nil {
		return argumentRequired("tab")
	}

	s.mutex.Lock()
	exists := slices.Contains(s.tabs, tab)
	s.mutex.Unlock()
	if exists {
		return nil
	}

	count, err := tab.controller.ItemCount()
	if err != nil {
		return err
	}
	tab.setBadge(count.Count)

	subscription, err := tab.controller.OnItemCountChanged(func(e ItemCountEvent) {
		tab.setBadge(e.Count)
	})
	if err != nil {
		return err
	}

	tab.mutex.Lock()
	tab.subscription = subscription
	tab.mutex.Unlock()

	s.mutex.Lock()
	if index < 0 || index > len(s.tabs) {
		index = len(s.tabs)
	}
	s.tabs = slices.Insert(s.tabs, index, tab)
	if s.selected < 0 {
		s.selected = 0
	} else if index <= s.selected {
		s.selected++
	}
	s.mutex.Unlock()

	return nil
}

// RemoveTab removes tab and stops syncing its badge. It reports whether the
// tab was removed.
func (s *TabSheet) RemoveTab(tab *Tab) bool {
	removed, _ := s.removeTab(tab)
	return removed
}

func (s *TabSheet) RemoveTabAt(index int) bool {
	s.mutex.Lock()
	if index < 0 || index >= len(s.tabs) {
		s.mutex.Unlock()
		return false
	}
	tab := s.tabs[index]
	s.mutex.Unlock()

	return s.RemoveTab(tab)
}

// RemoveAllTabs removes tabs until the sheet is empty. A failed removal is
// retried on the next round; after removeAllLimit rounds the accumulated
// failures are returned.
func (s *TabSheet) RemoveAllTabs() error {
	var errs []error
	for i := 0; i < removeAllLimit; i++ {
		s.mutex.Lock()
		if len(s.tabs) == 0 {
			s.mutex.Unlock()
			return nil
		}
		tab := s.tabs[0]
		s.mutex.Unlock()

		if _, err := s.removeTab(tab); err != nil {
			logger.Get().Warn("remove tab", "tab", tab.label, "err", err)
			errs = append(errs, err)
		}
	}

	if s.Len() == 0 {
		return nil
	}
	return fmt.Errorf("tabs left after %d attempts: %w", removeAllLimit, errors.Join(errs...))
}

func (s *TabSheet) removeTab(tab *Tab) (bool, error) {
	if tab == nil {
		return false, nil
	}

	s.mutex.Lock()
	before := s.BeforeRemove
	contained := slices.Contains(s.tabs, tab)
	s.mutex.Unlock()
	if !contained {
		return false, nil
	}

	if before != nil {
		if err := before(tab); err != nil {
			return false, err
		}
	}

	s.mutex.Lock()
	i := slices.Index(s.tabs, tab)
	if i < 0 {
		s.mutex.Unlock()
		return false, nil
	}
	s.tabs = slices.Delete(s.tabs, i, i+1)
	switch {
	case len(s.tabs) == 0:
		s.selected = -1
	case i < s.selected:
		s.selected--
	case s.selected >= len(s.tabs):
		s.selected = len(s.tabs) - 1
	}
	primary := s.primaryActions[tab]
	feature := s.featureActions[tab]
	delete(s.primaryActions, tab)
	delete(s.featureActions, tab)
	s.mutex.Unlock()

	if primary != nil {
		primary.clear()
	}
	if feature != nil {
		feature.clear()
	}

	tab.mutex.Lock()
	subscription := tab.subscription
	tab.subscription = nil
	tab.mutex.Unlock()
	subscription.Remove()

	return true, nil
}

func (s *TabSheet) Tabs() []*Tab {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return slices.Clone(s.tabs)
}

func (s *TabSheet) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.tabs)
}

func (s *TabSheet) IndexOf(tab *Tab) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return slices.Index(s.tabs, tab)
}

// FindTab looks a tab up by id or label.
func (s *TabSheet) FindTab(ref string) *Tab {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, tab := range s.tabs {
		if tab.id == ref || tab.label == ref {
			return tab
		}
	}
	return nil
}

func (s *TabSheet) SelectTab(index int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if index < 0 || index >= len(s.tabs) {
		return fmt.Errorf("tab index %d out of range [0, %d)", index, len(s.tabs))
	}
	s.selected = index
	return nil
}

// SelectedTab returns nil when the sheet is empty.
func (s *TabSheet) SelectedTab() *Tab {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.selected < 0 {
		return nil
	}
	return s.tabs[s.selected]
}

func (s *TabSheet) SelectedIndex() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.selected
}

func (s *TabSheet) AddPrimaryAction(tab *Tab, action TabAction) (*Subscription, error) {
	return s.addAction(s.primaryActions, tab, action)
}

func (s *TabSheet) AddFeatureAction(tab *Tab, action TabAction) (*Subscription, error) {
	return s.addAction(s.featureActions, tab, action)
}

func (s *TabSheet) addAction(actions map[*Tab]*listeners[*clickEvent], tab *Tab, action TabAction) (*Subscription, error) {
	if action == nil {
		return nil, argumentRequired("action")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !slices.Contains(s.tabs, tab) {
		return nil, fmt.Errorf("tab %q does not belong to this sheet", tab.Label())
	}
	l, ok := actions[tab]
	if !ok {
		l = &listeners[*clickEvent]{}
		actions[tab] = l
	}
	return l.add(func(e *clickEvent) {
		if err := action(e.tab); err != nil {
			e.errs = append(e.errs, err)
		}
	}), nil
}

// ClickPrimary runs every primary action of every tab.
func (s *TabSheet) ClickPrimary() error {
	return s.click(s.primaryActions)
}

// ClickFeature runs every feature action of every tab.
func (s *TabSheet) ClickFeature() error {
	return s.click(s.featureActions)
}

func (s *TabSheet) click(actions map[*Tab]*listeners[*clickEvent]) error {
	s.mutex.Lock()
	tabs := slices.Clone(s.tabs)
	targets := make([]*listeners[*clickEvent], len(tabs))
	for i, tab := range tabs {
		targets[i] = actions[tab]
	}
	s.mutex.Unlock()

	var errs []error
	for i, tab := range tabs {
		if targets[i] == nil {
			continue
		}
		e := &clickEvent{tab: tab}
		targets[i].emit(e)
		errs = append(errs, e.errs...)
	}
	return errors.Join(errs...)
}

func (s *TabSheet) SetPrimaryCaption(caption string) {
	s.mutex.Lock()
	s.primary.Caption = caption
	s.mutex.Unlock()
}

func (s *TabSheet) SetFeatureCaption(caption string) {
	s.mutex.Lock()
	s.feature.Caption = caption
	s.mutex.Unlock()
}

func (s *TabSheet) SetPrimaryVisible(visible bool) {
	s.mutex.Lock()
	s.primary.Visible = visible
	s.mutex.Unlock()
}

func (s *TabSheet) SetFeatureVisible(visible bool) {
	s.mutex.Lock()
	s.feature.Visible = visible
	s.mutex.Unlock()
}

type TabState struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
	Badge int    `json:"badge"`
}

type SheetState struct {
	Tabs     []TabState `json:"tabs"`
	Selected int        `json:"selected"`
	Primary  Button     `json:"primary"`
	Feature  Button     `json:"feature"`
}

func (s *TabSheet) State() SheetState {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	state := SheetState{
		Tabs:     make([]TabState, len(s.tabs)),
		Selected: s.selected,
		Primary:  s.primary,
		Feature:  s.feature,
	}
	for i, tab := range s.tabs {
		state.Tabs[i] = TabState{
			ID:    tab.id,
			Label: tab.label,
			Kind:  tab.controller.Kind(),
			Badge: tab.Badge(),
		}
	}
	return state
}
