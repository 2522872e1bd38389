package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/binding"
	"github.com/illuscio-dev/spanenvelope-go/config"
	"github.com/illuscio-dev/spanenvelope-go/encoding"
	"github.com/illuscio-dev/spanenvelope-go/envelope"
	"github.com/illuscio-dev/spanenvelope-go/spanerrors"
	"github.com/illuscio-dev/spanenvelope-go/spanhttp"
)

type widgetHandlers struct {
	store     *widgetStore
	responder *spanhttp.Responder
	paging    binding.PageRequestBinder
	filters   binding.FilterBinder
	timeNow   func() time.Time
}

// newEngine builds the content engine with widget, page and dated writers.
func newEngine(cfg config.Config) (*encoding.SpanEngine, error) {
	engine, err := encoding.NewContentEngine(cfg.Encoding.Sniff)
	if err != nil {
		return nil, err
	}

	engine.RegisterType(widgetTag)

	if _, err := envelope.RegisterPage[Widget](engine, widgetArg); err != nil {
		return nil, xerrors.Errorf("error registering widget pages: %w", err)
	}
	if _, err := envelope.RegisterDated[Widget](engine, widgetArg); err != nil {
		return nil, xerrors.Errorf("error registering dated widgets: %w", err)
	}
	return engine, nil
}

// newHandler returns the routes of the demo service wrapped in the access log.
func newHandler(
	cfg config.Config,
	logger zerolog.Logger,
	store *widgetStore,
	timeNow func() time.Time,
) (http.Handler, error) {
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	handlers := &widgetHandlers{
		store:     store,
		responder: spanhttp.NewResponder(engine, cfg.Server.MaxBlockingWrites, logger),
		paging: binding.PageRequestBinder{
			DefaultSize: cfg.Paging.DefaultSize,
			MaxSize:     cfg.Paging.MaxSize,
		},
		timeNow: timeNow,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /widgets", handlers.responder.Handle(handlers.list))
	mux.Handle("POST /widgets", handlers.responder.Handle(handlers.create))
	mux.Handle("GET /widgets/{name}", handlers.responder.Handle(handlers.get))

	return spanhttp.AccessLog(logger)(mux), nil
}

func (handlers *widgetHandlers) list(req *http.Request) (spanhttp.Result, error) {
	pageRequest, err := handlers.paging.Bind(req)
	if err != nil {
		return spanhttp.Result{}, err
	}
	expression, err := handlers.filters.Bind(req)
	if err != nil {
		return spanhttp.Result{}, err
	}

	page, err := envelope.Paginate(
		handlers.store.List(expression), pageRequest.Number, pageRequest.Size,
	)
	if err != nil {
		return spanhttp.Result{}, err
	}

	return spanhttp.Result{
		Status:   http.StatusOK,
		Argument: envelope.PageOf(widgetArg),
		Content:  page,
	}, nil
}

func (handlers *widgetHandlers) get(req *http.Request) (spanhttp.Result, error) {
	widget, err := handlers.store.Get(req.PathValue("name"))
	if err != nil {
		return spanhttp.Result{}, err
	}
	return datedResult(http.StatusOK, widget), nil
}

func (handlers *widgetHandlers) create(req *http.Request) (spanhttp.Result, error) {
	widget := Widget{}
	if err := handlers.responder.Decode(req, &widget); err != nil {
		return spanhttp.Result{}, err
	}

	widget.Name = strings.TrimSpace(widget.Name)
	if widget.Name == "" {
		return spanhttp.Result{}, spanerrors.RequestValidationError.New(
			"Widget name is required", map[string]interface{}{"field": "name"}, nil,
		)
	}

	widget.Modified = handlers.timeNow()
	handlers.store.Put(widget)

	return datedResult(http.StatusCreated, widget), nil
}

func datedResult(status int, widget Widget) spanhttp.Result {
	return spanhttp.Result{
		Status:   status,
		Argument: envelope.DatedOf(widgetArg),
		Content:  envelope.NewDated(widget).WithLastModified(widget.Modified),
	}
}
