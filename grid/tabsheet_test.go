package grid

import (
	"errors"
	"testing"

	. "github.com/fulldump/biff"
)

func newSampleTab(label string) *Tab {
	g, err := NewInMemory(sampleConfig(), newSamples(), matchSample)
	AssertNil(err)
	return NewTab(label, g)
}

func labels(tabs []*Tab) []string {
	result := make([]string, len(tabs))
	for i, tab := range tabs {
		result[i] = tab.Label()
	}
	return result
}

func TestTabSheet(t *testing.T) {

	Alternative("Tab sheet", func(a *A) {

		sheet := NewTabSheet()
		AssertNil(sheet.SelectedTab())
		AssertEqual(sheet.State().Primary, Button{Caption: DefaultPrimaryCaption, Visible: true})
		AssertEqual(sheet.State().Feature, Button{Caption: DefaultFeatureCaption, Visible: true})

		first := newSampleTab("first")
		second := newSampleTab("second")
		AssertNil(sheet.AddTab(first))
		AssertNil(sheet.AddTab(second))

		a.Alternative("Out of range index appends", func(a *A) {
			third := newSampleTab("third")
			AssertNil(sheet.AddTabAt(99, third))
			AssertEqual(labels(sheet.Tabs()), []string{"first", "second", "third"})
			AssertEqual(sheet.IndexOf(third), 2)
		})

		a.Alternative("Insert at index", func(a *A) {
			AssertNil(sheet.AddTabAt(0, newSampleTab("zero")))
			AssertEqual(labels(sheet.Tabs()), []string{"zero", "first", "second"})
			AssertEqual(sheet.SelectedTab(), first)
		})

		a.Alternative("Badge follows item count", func(a *A) {
			AssertEqual(first.Badge(), 5)

			g, ok := GridOf[sample, sampleFilter](first)
			AssertTrue(ok)
			AssertNil(g.Search("xyz"))
			AssertEqual(first.Badge(), 2)

			a.Alternative("Removed tab stops syncing", func(a *A) {
				AssertTrue(sheet.RemoveTab(first))
				AssertFalse(sheet.RemoveTab(first))
				AssertNil(g.Search(""))
				AssertEqual(first.Badge(), 2)
			})
		})

		a.Alternative("Grid of wrong type", func(a *A) {
			_, ok := GridOf[int, int](first)
			AssertFalse(ok)
		})

		a.Alternative("Remove at", func(a *A) {
			AssertFalse(sheet.RemoveTabAt(5))
			AssertTrue(sheet.RemoveTabAt(0))
			AssertEqual(labels(sheet.Tabs()), []string{"second"})
			AssertEqual(sheet.SelectedTab(), second)
		})

		a.Alternative("Selection follows removals", func(a *A) {
			AssertNil(sheet.SelectTab(1))
			AssertEqual(sheet.SelectedTab(), second)

			AssertTrue(sheet.RemoveTab(first))
			AssertEqual(sheet.SelectedTab(), second)
			AssertEqual(sheet.SelectedIndex(), 0)

			AssertTrue(sheet.RemoveTab(second))
			AssertNil(sheet.SelectedTab())
			AssertEqual(sheet.SelectedIndex(), -1)

			AssertNotNil(sheet.SelectTab(0))
		})

		a.Alternative("Remove all tabs survives a failure", func(a *A) {
			for _, label := range []string{"c", "d", "e"} {
				AssertNil(sheet.AddTab(newSampleTab(label)))
			}
			AssertEqual(sheet.Len(), 5)

			failed := 0
			sheet.BeforeRemove = func(tab *Tab) error {
				if tab.Label() == "d" && failed == 0 {
					failed++
					return errors.New("busy")
				}
				return nil
			}

			AssertNil(sheet.RemoveAllTabs())
			AssertEqual(sheet.Len(), 0)
			AssertEqual(failed, 1)
		})

		a.Alternative("Remove all tabs gives up", func(a *A) {
			sheet.BeforeRemove = func(tab *Tab) error {
				if tab == second {
					return errors.New("never")
				}
				return nil
			}

			err := sheet.RemoveAllTabs()
			AssertNotNil(err)
			AssertEqual(labels(sheet.Tabs()), []string{"second"})
		})

		a.Alternative("Actions fan out in tab order", func(a *A) {
			calls := []string{}
			record := func(name string) TabAction {
				return func(tab *Tab) error {
					calls = append(calls, name+"@"+tab.Label())
					return nil
				}
			}

			_, err := sheet.AddPrimaryAction(second, record("refresh"))
			AssertNil(err)
			_, err = sheet.AddPrimaryAction(first, record("refresh"))
			AssertNil(err)
			subscription, err := sheet.AddPrimaryAction(first, record("log"))
			AssertNil(err)
			_, err = sheet.AddFeatureAction(second, record("export"))
			AssertNil(err)

			AssertNil(sheet.ClickPrimary())
			AssertEqual(calls, []string{"refresh@first", "log@first", "refresh@second"})

			calls = []string{}
			subscription.Remove()
			AssertNil(sheet.ClickPrimary())
			AssertEqual(calls, []string{"refresh@first", "refresh@second"})

			calls = []string{}
			AssertNil(sheet.ClickFeature())
			AssertEqual(calls, []string{"export@second"})

			a.Alternative("Errors are joined", func(a *A) {
				boom := errors.New("boom")
				_, err := sheet.AddFeatureAction(first, func(*Tab) error { return boom })
				AssertNil(err)

				calls = []string{}
				err = sheet.ClickFeature()
				AssertTrue(errors.Is(err, boom))
				AssertEqual(calls, []string{"export@second"})
			})

			a.Alternative("Removed tabs lose their actions", func(a *A) {
				AssertTrue(sheet.RemoveTab(second))
				calls = []string{}
				AssertNil(sheet.ClickFeature())
				AssertEqual(len(calls), 0)
			})
		})

		a.Alternative("Action for a foreign tab", func(a *A) {
			_, err := sheet.AddPrimaryAction(newSampleTab("other"), func(*Tab) error { return nil })
			AssertNotNil(err)
		})

		a.Alternative("Buttons", func(a *A) {
			sheet.SetPrimaryCaption("Refresh")
			sheet.SetFeatureCaption("Export")
			sheet.SetFeatureVisible(false)

			state := sheet.State()
			AssertEqual(state.Primary, Button{Caption: "Refresh", Visible: true})
			AssertEqual(state.Feature, Button{Caption: "Export", Visible: false})
			AssertEqual(len(state.Tabs), 2)
			AssertEqual(state.Tabs[0].Badge, 5)
			AssertEqual(state.Selected, 0)
		})

		a.Alternative("Find tab", func(a *A) {
			AssertEqual(sheet.FindTab("second"), second)
			AssertEqual(sheet.FindTab(first.ID()), first)
			AssertNil(sheet.FindTab("nope"))
		})
	})
}
