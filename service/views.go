package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fulldump/labgrid/grid"
	"github.com/fulldump/labgrid/logger"
)

const (
	ViewKindExperiment = "experiment"
	ViewKindProject    = "project"
)

// View is an open tab sheet kept in memory until it is closed or expires.
type View struct {
	Id      string
	Kind    string
	Subject string // experiment or project id
	Sheet   *grid.TabSheet

	mutex      sync.Mutex
	lastAccess time.Time
	exports    map[string]string
}

type ViewState struct {
	Id      string `json:"id"`
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	grid.SheetState
}

func newView(kind, subject string) *View {
	return &View{
		Id:         uuid.NewString(),
		Kind:       kind,
		Subject:    subject,
		Sheet:      grid.NewTabSheet(),
		lastAccess: time.Now(),
		exports:    map[string]string{},
	}
}

func (v *View) State() ViewState {
	return ViewState{
		Id:         v.Id,
		Kind:       v.Kind,
		Subject:    v.Subject,
		SheetState: v.Sheet.State(),
	}
}

// Tab finds a tab by id or label.
func (v *View) Tab(ref string) (*grid.Tab, error) {
	tab := v.Sheet.FindTab(ref)
	if tab == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrorTabNotFound, ref)
	}
	return tab, nil
}

// TakeExports returns the exports produced since the last call, by tab label.
func (v *View) TakeExports() map[string]string {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	exports := v.exports
	v.exports = map[string]string{}
	return exports
}

func (v *View) addExport(label, content string) {
	v.mutex.Lock()
	v.exports[label] = content
	v.mutex.Unlock()
}

func (v *View) touch(now time.Time) {
	v.mutex.Lock()
	v.lastAccess = now
	v.mutex.Unlock()
}

func (v *View) idleSince(now time.Time) time.Duration {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return now.Sub(v.lastAccess)
}

func (v *View) close() error {
	tabs := v.Sheet.Tabs()
	err := v.Sheet.RemoveAllTabs()
	for _, tab := range tabs {
		tab.Controller().Dispose()
	}
	return err
}

type views struct {
	mutex sync.Mutex
	items map[string]*View
}

func newViews() *views {
	return &views{items: map[string]*View{}}
}

func (r *views) add(view *View) {
	r.mutex.Lock()
	r.items[view.Id] = view
	r.mutex.Unlock()
}

func (r *views) get(id string) (*View, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	view, ok := r.items[id]
	return view, ok
}

func (r *views) remove(id string) (*View, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	view, ok := r.items[id]
	delete(r.items, id)
	return view, ok
}

func (r *views) all() []*View {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return slices.Collect(maps.Values(r.items))
}

func (s *Service) GetView(id string) (*View, error) {
	view, ok := s.views.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrorViewNotFound, id)
	}
	view.touch(time.Now())
	return view, nil
}

// CloseView removes every tab of the view and disposes its grids.
func (s *Service) CloseView(id string) error {
	view, ok := s.views.remove(id)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrorViewNotFound, id)
	}
	return view.close()
}

// ExpireViews closes the views idle for longer than the configured TTL and
// returns how many were closed.
func (s *Service) ExpireViews(now time.Time) int {
	if s.options.ViewTTL <= 0 {
		return 0
	}

	n := 0
	for _, view := range s.views.all() {
		if view.idleSince(now) < s.options.ViewTTL {
			continue
		}
		if _, ok := s.views.remove(view.Id); !ok {
			continue
		}
		if err := view.close(); err != nil {
			logger.Get().Warn("close expired view", "view", view.Id, "err", err)
		}
		n++
	}
	return n
}

// CloseAll closes every open view, used on shutdown.
func (s *Service) CloseAll() error {
	var errs []error
	for _, view := range s.views.all() {
		s.views.remove(view.Id)
		errs = append(errs, view.close())
	}
	return errors.Join(errs...)
}
