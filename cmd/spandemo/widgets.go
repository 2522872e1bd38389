package main

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/illuscio-dev/spanenvelope-go/encoding"
	"github.com/illuscio-dev/spanenvelope-go/filter"
	"github.com/illuscio-dev/spanenvelope-go/spanerrors"
)

const widgetTag encoding.TypeTag = "widget"

var widgetArg = encoding.ArgumentOf(widgetTag)

// Widget is the demo resource. Filters can match on name, color and count.
type Widget struct {
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	Count    int       `json:"count"`
	Modified time.Time `json:"-" yaml:"-" bson:"-"`
}

// Field returns the filterable property named property as a string.
func (widget Widget) Field(property string) (string, bool) {
	switch property {
	case "name":
		return widget.Name, true
	case "color":
		return widget.Color, true
	case "count":
		return strconv.Itoa(widget.Count), true
	}
	return "", false
}

// WidgetNotFoundError is returned when no widget has the requested name.
var WidgetNotFoundError = spanerrors.NewSpanErrorType("WidgetNotFoundError", 2000, 404)

// errorIndex resolves the default error types plus the ones declared here.
func errorIndex() map[int]*spanerrors.SpanErrorType {
	return spanerrors.IndexErrorTypes(
		append([]*spanerrors.SpanErrorType{WidgetNotFoundError}, spanerrors.ErrorList...)...,
	)
}

// widgetStore keeps widgets in memory, keyed by name.
type widgetStore struct {
	lock    sync.RWMutex
	widgets map[string]Widget
}

func newWidgetStore(seed ...Widget) *widgetStore {
	store := &widgetStore{widgets: make(map[string]Widget, len(seed))}
	for _, widget := range seed {
		store.widgets[widget.Name] = widget
	}
	return store
}

// List returns the widgets matching expression, sorted by name.
func (store *widgetStore) List(expression filter.Expression) []Widget {
	store.lock.RLock()
	defer store.lock.RUnlock()

	matched := lo.Filter(lo.Values(store.widgets), func(widget Widget, _ int) bool {
		return expression.Matches(widget.Field)
	})
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Name < matched[j].Name
	})
	return matched
}

func (store *widgetStore) Get(name string) (Widget, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	widget, ok := store.widgets[name]
	if !ok {
		return Widget{}, WidgetNotFoundError.New(
			"No widget named '"+name+"'", map[string]interface{}{"name": name}, nil,
		)
	}
	return widget, nil
}

// Put stores widget, replacing any widget with the same name.
func (store *widgetStore) Put(widget Widget) {
	store.lock.Lock()
	defer store.lock.Unlock()

	store.widgets[widget.Name] = widget
}

func demoWidgets(modified time.Time) []Widget {
	return []Widget{
		{Name: "anvil", Color: "black", Count: 3, Modified: modified},
		{Name: "bolt", Color: "silver", Count: 120, Modified: modified},
		{Name: "cog", Color: "brass", Count: 42, Modified: modified},
		{Name: "dial", Color: "white", Count: 7, Modified: modified},
		{Name: "gear", Color: "brass", Count: 15, Modified: modified},
		{Name: "spring", Color: "silver", Count: 64, Modified: modified},
	}
}
