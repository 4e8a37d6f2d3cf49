package grid

import (
	"fmt"
	"slices"
)

// Action is a secondary action applied to the current selection.
type Action[T any] struct {
	Name    string
	Caption string
	Run     func(selected []T) error
}

type ActionState struct {
	Name    string `json:"name"`
	Caption string `json:"caption"`
}

// SetSecondaryActions replaces the secondary actions. At least one is
// required.
func (g *Grid[T, F]) SetSecondaryActions(first Action[T], more ...Action[T]) error {
	actions := append([]Action[T]{first}, more...)
	for _, action := range actions {
		if action.Name == "" {
			return argumentRequired("action name")
		}
		if action.Run == nil {
			return argumentRequired("action " + action.Name)
		}
	}

	g.mutex.Lock()
	g.actions = actions
	g.mutex.Unlock()
	return nil
}

func (g *Grid[T, F]) Actions() []ActionState {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.actionsLocked()
}

func (g *Grid[T, F]) actionsLocked() []ActionState {
	result := make([]ActionState, len(g.actions))
	for i, action := range g.actions {
		caption := action.Caption
		if caption == "" {
			caption = action.Name
		}
		result[i] = ActionState{Name: action.Name, Caption: caption}
	}
	return result
}

// RunAction runs the named secondary action with the current selection.
func (g *Grid[T, F]) RunAction(name string) error {
	g.mutex.Lock()
	if g.disposed {
		g.mutex.Unlock()
		return ErrDisposed
	}
	i := slices.IndexFunc(g.actions, func(action Action[T]) bool {
		return action.Name == name
	})
	if i < 0 {
		g.mutex.Unlock()
		return fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}
	action := g.actions[i]
	selected := g.selectedLocked()
	g.mutex.Unlock()

	return action.Run(selected)
}
