package grid

import (
	"cmp"
	"errors"
	"slices"
	"strconv"
	"testing"
	"time"

	. "github.com/fulldump/biff"
)

func sampleConfig() Config[sample, sampleFilter] {
	return Config[sample, sampleFilter]{
		Key:    sampleKey,
		Filter: func() sampleFilter { return sampleFilter{} },
		Combine: func(text string, f sampleFilter) sampleFilter {
			f.Term = text
			return f
		},
		Columns: []Column[sample]{
			{ID: "code", Header: "Code", Compare: func(a, b sample) int { return cmp.Compare(a.Code, b.Code) }},
			{ID: "species", Header: "Species", Value: func(s sample) string { return s.Species }},
			{ID: "volume", Header: "Volume", Compare: func(a, b sample) int { return cmp.Compare(a.Volume, b.Volume) }},
			{ID: "menu", Header: " "},
		},
		Debounce: -1,
	}
}

func codes(items []sample) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.Code
	}
	return result
}

func TestNewGrid_Arguments(t *testing.T) {

	Alternative("Constructors", func(a *A) {

		config := sampleConfig()

		a.Alternative("Missing key", func(a *A) {
			config.Key = nil
			g, err := NewInMemory(config, newSamples(), matchSample)
			AssertTrue(errors.Is(err, ErrArgumentRequired))
			AssertTrue(g == nil)
		})

		a.Alternative("Missing filter factory", func(a *A) {
			config.Filter = nil
			p := &pagedSamples{}
			_, err := NewPaged(config, p.Fetch, p.Count)
			AssertTrue(errors.Is(err, ErrArgumentRequired))
		})

		a.Alternative("Missing combinator", func(a *A) {
			config.Combine = nil
			_, err := NewInMemory(config, newSamples(), matchSample)
			AssertTrue(errors.Is(err, ErrArgumentRequired))
		})

		a.Alternative("Missing predicate", func(a *A) {
			_, err := NewInMemory[sample, sampleFilter](config, newSamples(), nil)
			AssertTrue(errors.Is(err, ErrArgumentRequired))
		})

		a.Alternative("Missing count callback", func(a *A) {
			p := &pagedSamples{}
			_, err := NewPaged(config, p.Fetch, nil)
			AssertTrue(errors.Is(err, ErrArgumentRequired))
		})

		a.Alternative("Duplicated column", func(a *A) {
			config.Columns = append(config.Columns, config.Columns[0])
			_, err := NewInMemory(config, newSamples(), matchSample)
			AssertTrue(errors.Is(err, ErrDuplicateColumn))
		})
	})
}

func TestGrid_InMemory(t *testing.T) {

	Alternative("In memory grid", func(a *A) {

		g, err := NewInMemory(sampleConfig(), newSamples(), matchSample)
		AssertNil(err)
		defer g.Dispose()

		filterEvents := []FilterUpdateEvent[sampleFilter]{}
		g.OnFilterUpdate(func(e FilterUpdateEvent[sampleFilter]) {
			filterEvents = append(filterEvents, e)
		})

		selectionEvents := 0
		g.OnSelectionChanged(func(e SelectionEvent[sample]) {
			selectionEvents++
		})

		a.Alternative("Construction does not emit", func(a *A) {
			AssertEqual(len(filterEvents), 0)
			filter, hasFilter := g.Filter()
			AssertFalse(hasFilter)
			AssertEqual(filter, sampleFilter{})
			AssertEqual(g.Kind(), InMemory)
		})

		a.Alternative("Search", func(a *A) {
			AssertNil(g.Search("xyz"))

			items, err := g.Items()
			AssertNil(err)
			AssertEqual(codes(items), []string{"QXYZW001", "QXYZW002"})

			AssertEqual(len(filterEvents), 1)
			AssertFalse(filterEvents[0].HasOld)
			AssertEqual(filterEvents[0].Old, sampleFilter{})
			AssertEqual(filterEvents[0].Updated.Term, "xyz")

			a.Alternative("Second search has old filter", func(a *A) {
				AssertNil(g.Search("abcd"))
				AssertEqual(len(filterEvents), 2)
				AssertTrue(filterEvents[1].HasOld)
				AssertEqual(filterEvents[1].Old.Term, "xyz")
				AssertEqual(filterEvents[1].Updated.Term, "abcd")
				AssertEqual(g.SearchText(), "abcd")
			})
		})

		a.Alternative("Selection survives filtering", func(a *A) {
			AssertNil(g.SelectKeys("QABCD001", "QXYZW001", "NOPE"))
			AssertEqual(selectionEvents, 1)

			AssertNil(g.Search("abcd"))
			AssertEqual(codes(g.Selected()), []string{"QABCD001", "QXYZW001"})

			AssertNil(g.Search(""))
			AssertEqual(codes(g.Selected()), []string{"QABCD001", "QXYZW001"})
			AssertEqual(selectionEvents, 1)
		})

		a.Alternative("Select all selects matching items only", func(a *A) {
			AssertNil(g.Search("xyz"))
			AssertNil(g.SelectAll())
			AssertEqual(g.SelectedKeys(), []string{"QXYZW001", "QXYZW002"})

			g.DeselectKeys("QXYZW001")
			AssertEqual(g.SelectedKeys(), []string{"QXYZW002"})

			g.DeselectAll()
			AssertEqual(len(g.Selected()), 0)
			AssertEqual(selectionEvents, 3)

			g.DeselectAll()
			AssertEqual(selectionEvents, 3)
		})

		a.Alternative("Selection text", func(a *A) {
			g.SetItemLabel("sample")
			items := newSamples()

			text, visible := g.SelectionText()
			AssertFalse(visible)
			AssertEqual(text, "0 sample is selected")

			g.Select(items[0])
			text, visible = g.SelectionText()
			AssertTrue(visible)
			AssertEqual(text, "1 sample is selected")

			g.Select(items[1])
			text, _ = g.SelectionText()
			AssertEqual(text, "2 samples are selected")

			g.Deselect(items[0], items[1])
			_, visible = g.SelectionText()
			AssertFalse(visible)
		})

		a.Alternative("Columns", func(a *A) {
			columns := g.Columns()
			AssertEqual(len(columns), 4)
			for _, column := range columns {
				AssertTrue(column.Visible)
			}
			AssertTrue(columns[0].Sortable)
			AssertFalse(columns[1].Sortable) // no comparator
			AssertFalse(columns[3].Sortable) // blank header

			AssertNil(g.SetVisibleColumns("code", "volume"))
			visible := []string{}
			for _, column := range g.VisibleColumns() {
				visible = append(visible, column.ID)
			}
			AssertEqual(visible, []string{"code", "volume"})

			AssertNil(g.SetColumnVisible("species", true))
			AssertEqual(len(g.VisibleColumns()), 3)

			err := g.SetColumnVisible("nope", true)
			AssertTrue(errors.Is(err, ErrColumnNotFound))
		})

		a.Alternative("Sort", func(a *A) {
			AssertNil(g.SetSort(SortOrder{Column: "volume", Direction: Descending}))
			page, err := g.Page(0, 2)
			AssertNil(err)
			AssertEqual(codes(page), []string{"QXYZW001", "QXYZW002"})
			AssertEqual(g.Sort(), []SortOrder{{Column: "volume", Direction: Descending}})

			err = g.SetSort(SortOrder{Column: "menu"})
			AssertTrue(errors.Is(err, ErrColumnNotSortable))

			AssertNil(g.SetSort())
			page, _ = g.Page(0, 1)
			AssertEqual(page[0].Code, "QABCD001")
		})

		a.Alternative("Secondary actions", func(a *A) {
			received := []string{}
			err := g.SetSecondaryActions(Action[sample]{
				Name:    "collect",
				Caption: "Collect",
				Run: func(selected []sample) error {
					received = codes(selected)
					return nil
				},
			})
			AssertNil(err)

			g.Select(newSamples()[2])
			AssertNil(g.RunAction("collect"))
			AssertEqual(received, []string{"QABCD003"})

			err = g.RunAction("missing")
			AssertTrue(errors.Is(err, ErrActionNotFound))

			err = g.SetSecondaryActions(Action[sample]{Name: "broken"})
			AssertTrue(errors.Is(err, ErrArgumentRequired))
		})

		a.Alternative("Paged only operations fail", func(a *A) {
			_, err := g.SetPageSize(200)
			AssertTrue(errors.Is(err, ErrIncompatibleDataSource))
		})

		a.Alternative("Upstream data change", func(a *A) {
			counts := []int{}
			_, err := g.OnItemCountChanged(func(e ItemCountEvent) {
				counts = append(counts, e.Count)
			})
			AssertNil(err)

			AssertNil(g.SetItems(newSamples()[:2]))
			AssertEqual(counts, []int{2})
		})

		a.Alternative("State", func(a *A) {
			g.SetPlaceholder("Search samples")
			g.SetItemLabel("sample")
			g.Select(newSamples()[0])

			state := g.State()
			AssertEqual(state.ID, g.ID())
			AssertEqual(state.Placeholder, "Search samples")
			AssertEqual(state.ItemCount.Count, 5)
			AssertEqual(state.Selected, []string{"QABCD001"})
			AssertEqual(state.Selection, SelectionIndicator{Visible: true, Text: "1 sample is selected"})
			AssertEqual(state.PageSize, 0)
		})

		a.Alternative("Dispose", func(a *A) {
			g.Dispose()
			g.Dispose()

			AssertTrue(errors.Is(g.Search("x"), ErrDisposed))
			AssertTrue(errors.Is(g.Type("x"), ErrDisposed))
			g.Select(newSamples()[0])
			AssertEqual(selectionEvents, 0)
		})
	})
}

func TestGrid_Paged(t *testing.T) {

	Alternative("Paged grid", func(a *A) {

		items := []sample{}
		for i := 0; i < 250; i++ {
			species := "human"
			if i%5 == 0 {
				species = "mouse"
			}
			items = append(items, sample{Code: "QPAGE" + strconv.Itoa(1000+i), Species: species, Volume: i})
		}
		p := &pagedSamples{items: items}

		config := sampleConfig()
		config.Filter = func() sampleFilter { return sampleFilter{Species: "mouse"} }
		config.PageSize = 100

		g, err := NewPaged(config, p.Fetch, p.Count)
		AssertNil(err)
		defer g.Dispose()

		a.Alternative("Initial filter comes from the factory", func(a *A) {
			count, err := g.ItemCount()
			AssertNil(err)
			AssertEqual(count.Count, 50)
			AssertEqual(g.Kind(), Paged)
			AssertEqual(g.State().PageSize, 100)
		})

		a.Alternative("Search keeps the current filter", func(a *A) {
			AssertNil(g.Search("QPAGE100"))
			count, _ := g.ItemCount()
			AssertEqual(count.Count, 2) // 1000 and 1005

			AssertNil(g.Search("QPAGE1005"))
			count, _ = g.ItemCount()
			AssertEqual(count.Count, 1)

			filter, _ := g.Filter()
			AssertEqual(filter, sampleFilter{Term: "QPAGE1005", Species: "mouse"})
		})

		a.Alternative("Select all", func(a *A) {
			AssertNil(g.Search(""))
			AssertNil(g.SelectAll())
			AssertEqual(len(g.Selected()), 50)

			AssertNil(g.Search("QPAGE100"))
			g.DeselectAll()
			AssertNil(g.SelectKeys("QPAGE1005", "QPAGE1001"))
			AssertEqual(g.SelectedKeys(), []string{"QPAGE1005"})
		})

		a.Alternative("Sort is forwarded", func(a *A) {
			AssertNil(g.SetSort(SortOrder{Column: "volume", Direction: Descending}))
			page, err := g.Page(0, 1)
			AssertNil(err)
			AssertEqual(page[0].Volume, 245)

			last := p.fetches[len(p.fetches)-1]
			AssertEqual(last.Sort, []SortOrder{{Column: "volume", Direction: Descending}})

			// paged grids do not need a comparator
			AssertNil(g.SetSort(SortOrder{Column: "species"}))
		})

		a.Alternative("In memory only operations fail", func(a *A) {
			err := g.SetItems(items)
			AssertTrue(errors.Is(err, ErrIncompatibleDataSource))

			_, err = g.Items()
			AssertTrue(errors.Is(err, ErrIncompatibleDataSource))
		})

		a.Alternative("Page size", func(a *A) {
			size, err := g.SetPageSize(5)
			AssertNil(err)
			AssertEqual(size, MinPageSize)
			AssertEqual(g.State().PageSize, MinPageSize)
		})

		a.Alternative("Rows", func(a *A) {
			rows, err := g.Rows(0, 3)
			AssertNil(err)
			AssertEqual(len(rows), 3)
			AssertEqual(rows[0].(sample).Code, "QPAGE1000")
		})
	})
}

func TestGrid_DefaultFilter(t *testing.T) {

	Alternative("Default filter", func(a *A) {

		config := Config[int, int]{
			Key:     strconv.Itoa,
			Filter:  func() int { return 2 },
			Combine: func(text string, filter int) int { return filter },
		}
		atLeast := func(item, filter int) bool { return item >= filter }

		a.Alternative("In memory grid starts filtered", func(a *A) {
			g, err := NewInMemory(config, []int{1, 2, 3}, atLeast)
			AssertNil(err)
			defer g.Dispose()

			count, err := g.ItemCount()
			AssertNil(err)
			AssertEqual(count.Count, 2)

			items, _ := g.Items()
			AssertEqual(items, []int{2, 3})

			filter, searched := g.Filter()
			AssertEqual(filter, 2)
			AssertFalse(searched)
		})

		a.Alternative("Paged grid starts filtered", func(a *A) {
			items := []int{1, 2, 3}
			fetch := func(q Query[int]) ([]int, error) {
				result := []int{}
				for _, item := range items {
					if atLeast(item, q.Filter) {
						result = append(result, item)
					}
				}
				return result, nil
			}
			count := func(q Query[int]) (int, error) {
				page, _ := fetch(q)
				return len(page), nil
			}

			g, err := NewPaged(config, fetch, count)
			AssertNil(err)
			defer g.Dispose()

			c, err := g.ItemCount()
			AssertNil(err)
			AssertEqual(c.Count, 2)
		})
	})
}

func TestGrid_SearchCombinesCurrentFilter(t *testing.T) {

	config := Config[int, []string]{
		Key:    strconv.Itoa,
		Filter: func() []string { return []string{"default"} },
		Combine: func(text string, filter []string) []string {
			return append(slices.Clone(filter), text)
		},
		Debounce: -1,
	}
	g, err := NewInMemory(config, []int{1, 2, 3}, func(int, []string) bool { return true })
	AssertNil(err)
	defer g.Dispose()

	events := []FilterUpdateEvent[[]string]{}
	g.OnFilterUpdate(func(e FilterUpdateEvent[[]string]) {
		events = append(events, e)
	})

	AssertNil(g.Search("a"))
	AssertNil(g.Search("b"))

	filter, searched := g.Filter()
	AssertTrue(searched)
	AssertEqual(filter, []string{"default", "a", "b"})

	AssertEqual(len(events), 2)
	AssertEqual(events[0].Old, []string{"default"})
	AssertEqual(events[1].Old, []string{"default", "a"})
	AssertEqual(events[1].Updated, []string{"default", "a", "b"})
}

func TestGrid_TypeAfterDispose(t *testing.T) {

	config := sampleConfig()
	config.Debounce = 20 * time.Millisecond

	g, err := NewInMemory(config, newSamples(), matchSample)
	AssertNil(err)

	applied := 0
	g.OnFilterUpdate(func(e FilterUpdateEvent[sampleFilter]) {
		applied++
	})

	AssertNil(g.Type("xyz"))
	g.Dispose()
	time.Sleep(100 * time.Millisecond)

	AssertEqual(applied, 0)
	filter, searched := g.Filter()
	AssertFalse(searched)
	AssertEqual(filter, sampleFilter{})
}

func TestGrid_Type(t *testing.T) {

	config := sampleConfig()
	config.Debounce = 20 * time.Millisecond

	g, err := NewInMemory(config, newSamples(), matchSample)
	AssertNil(err)
	defer g.Dispose()

	applied := make(chan FilterUpdateEvent[sampleFilter], 10)
	g.OnFilterUpdate(func(e FilterUpdateEvent[sampleFilter]) {
		applied <- e
	})

	for _, text := range []string{"q", "qx", "qxy", "qxyz"} {
		AssertNil(g.Type(text))
	}

	select {
	case e := <-applied:
		AssertEqual(e.Updated.Term, "qxyz")
	case <-time.After(2 * time.Second):
		t.Fatal("debounced search was not applied")
	}

	select {
	case e := <-applied:
		t.Fatalf("unexpected second search %q", e.Updated.Term)
	case <-time.After(100 * time.Millisecond):
	}

	count, _ := g.ItemCount()
	AssertEqual(count.Count, 2)
}
