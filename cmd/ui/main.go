package main

import (
	"context"
	"image/color"
	"os"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"todoboard/internal/config"
	"todoboard/pkg/board"
	"todoboard/pkg/client"
	"todoboard/pkg/logger"
	"todoboard/pkg/task"
)

var theme *material.Theme

// Pages
const (
	pageList = iota
	pageDetail
	pageAdd
	pageEdit
)

type card struct {
	open     widget.Clickable
	complete widget.Clickable
}

type UI struct {
	w      *app.Window
	store  *board.Store
	list   *board.ListView
	detail *board.DetailView
	log    logger.Logger

	currentPage int

	// pending holds work posted from remote-call goroutines; it runs on the
	// window goroutine before the next frame.
	mu      sync.Mutex
	pending []func()
	notice  string

	// List
	taskList      widget.List
	cards         map[task.ID]*card
	newTaskEditor widget.Editor
	createTaskBtn widget.Clickable
	refreshBtn    widget.Clickable
	deleteModeBtn widget.Clickable
	deleteSelBtn  widget.Clickable
	cancelBtn     widget.Clickable
	newFormBtn    widget.Clickable

	// Detail
	detailList widget.List
	backBtn    widget.Clickable
	editBtn    widget.Clickable

	// Add and edit share the form page; only one of add and edit is set.
	add            *board.AddView
	edit           *board.EditView
	images         []string
	formList       widget.List
	titleEditor    widget.Editor
	descEditor     widget.Editor
	deadlineEditor widget.Editor
	bulletEditor   widget.Editor
	addBulletBtn   widget.Clickable
	removeBullet   []widget.Clickable
	imageEditor    widget.Editor
	attachBtn      widget.Clickable
	removeImage    []widget.Clickable
	saveBtn        widget.Clickable
	cancelEditBtn  widget.Clickable
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Default().Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(&logger.Config{Level: logger.LogLevel(cfg.Log.Level), Output: os.Stderr, JSON: cfg.Log.JSON, TimeFormat: time.TimeOnly, Prefix: "ui"})

	theme = material.NewTheme()
	theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	theme.Palette.Bg = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF}
	theme.Palette.Fg = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	theme.Palette.ContrastBg = color.NRGBA{R: 0x30, G: 0x60, B: 0xA0, A: 0xFF}
	theme.Palette.ContrastFg = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	remote := client.New(client.Config{
		BaseURL:    cfg.Client.APIBase,
		Timeout:    cfg.Client.Timeout,
		ImageField: cfg.Client.ImageField,
	}, log)
	store := board.NewStore(remote, log)

	ui := &UI{
		w:      new(app.Window),
		store:  store,
		list:   board.NewListView(store),
		detail: board.NewDetailView(store),
		log:    log,
		cards:  make(map[task.ID]*card),
	}
	ui.taskList.Axis = layout.Vertical
	ui.detailList.Axis = layout.Vertical
	ui.formList.Axis = layout.Vertical
	ui.newTaskEditor.SingleLine = true
	ui.newTaskEditor.Submit = true
	ui.titleEditor.SingleLine = true
	ui.deadlineEditor.SingleLine = true
	ui.bulletEditor.SingleLine = true
	ui.bulletEditor.Submit = true
	ui.imageEditor.SingleLine = true
	ui.imageEditor.Submit = true

	go ui.watch()
	go ui.refresh()

	go func() {
		ui.w.Option(app.Title("todoboard"))
		ui.w.Option(app.Size(unit.Dp(900), unit.Dp(800)))
		if err := ui.run(); err != nil {
			log.Error("window closed", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func (ui *UI) run() error {
	var ops op.Ops
	for {
		switch e := ui.w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			ui.drain()
			ui.handleClicks(gtx)
			ui.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

// watch redraws whenever the store applies or fails an operation.
func (ui *UI) watch() {
	ch := ui.store.Subscribe()
	for c := range ch {
		if err := ui.store.Err(c.Op); err != nil {
			ui.setNotice(string(c.Op) + " failed: " + err.Error())
		}
		ui.w.Invalidate()
	}
}

func (ui *UI) post(fn func()) {
	ui.mu.Lock()
	ui.pending = append(ui.pending, fn)
	ui.mu.Unlock()
	ui.w.Invalidate()
}

func (ui *UI) drain() {
	ui.mu.Lock()
	fns := ui.pending
	ui.pending = nil
	ui.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (ui *UI) setNotice(msg string) {
	ui.mu.Lock()
	ui.notice = msg
	ui.mu.Unlock()
	ui.w.Invalidate()
}

func (ui *UI) getNotice() string {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.notice
}

func ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (ui *UI) refresh() {
	c, cancel := ctx()
	defer cancel()
	ui.list.Refresh(c)
}
