package main

import (
	"errors"
	"os"
	"slices"
	"strings"

	"gioui.org/layout"
	"gioui.org/widget"

	"todoboard/pkg/board"
	"todoboard/pkg/task"
)

func (ui *UI) handleClicks(gtx layout.Context) {
	switch ui.currentPage {
	case pageDetail:
		ui.handleDetailClicks(gtx)
	case pageAdd, pageEdit:
		ui.handleFormClicks(gtx)
	default:
		ui.handleListClicks(gtx)
	}
}

func (ui *UI) handleListClicks(gtx layout.Context) {
	if ui.refreshBtn.Clicked(gtx) {
		ui.setNotice("")
		go ui.refresh()
	}
	if ui.createTaskBtn.Clicked(gtx) || submitted(gtx, &ui.newTaskEditor) {
		title := ui.newTaskEditor.Text()
		ui.newTaskEditor.SetText("")
		go ui.create(title)
	}
	if ui.newFormBtn.Clicked(gtx) {
		ui.openAdd()
	}
	if ui.deleteModeBtn.Clicked(gtx) {
		ui.list.EnterMultiDelete()
	}
	if ui.cancelBtn.Clicked(gtx) {
		ui.list.Cancel()
	}
	if ui.deleteSelBtn.Clicked(gtx) {
		go ui.deleteSelected()
	}
	for _, t := range ui.list.Tasks() {
		c := ui.card(t.ID)
		if c.open.Clicked(gtx) {
			if ui.list.MultiDelete() {
				ui.list.Toggle(t.ID)
			} else {
				ui.openDetail(t.ID)
			}
		}
		if c.complete.Clicked(gtx) && !t.Completed {
			go ui.markComplete(t.ID)
		}
	}
}

func (ui *UI) handleDetailClicks(gtx layout.Context) {
	if ui.backBtn.Clicked(gtx) {
		ui.currentPage = pageList
	}
	if ui.editBtn.Clicked(gtx) && ui.detail.State() == board.Loaded {
		go ui.openEdit(ui.detail.Task().ID)
	}
}

// form returns the form behind the current page, or nil off the form page.
func (ui *UI) form() *board.Form {
	switch {
	case ui.currentPage == pageAdd && ui.add != nil:
		return &ui.add.Form
	case ui.currentPage == pageEdit && ui.edit != nil:
		return &ui.edit.Form
	}
	return nil
}

func (ui *UI) handleFormClicks(gtx layout.Context) {
	f := ui.form()
	if f == nil {
		return
	}
	if ui.cancelEditBtn.Clicked(gtx) {
		ui.closeForm()
		return
	}
	if ui.addBulletBtn.Clicked(gtx) || submitted(gtx, &ui.bulletEditor) {
		f.AddBullet(ui.bulletEditor.Text())
		ui.bulletEditor.SetText("")
	}
	for i := range ui.removeBullet {
		if ui.removeBullet[i].Clicked(gtx) {
			f.RemoveBullet(i)
			break
		}
	}
	if ui.attachBtn.Clicked(gtx) || submitted(gtx, &ui.imageEditor) {
		ui.attachPath(strings.TrimSpace(ui.imageEditor.Text()))
	}
	for i := range ui.removeImage {
		if ui.removeImage[i].Clicked(gtx) && i < len(ui.images) {
			ui.images = slices.Delete(ui.images, i, i+1)
			break
		}
	}
	if ui.saveBtn.Clicked(gtx) {
		f.Title = ui.titleEditor.Text()
		f.Description = ui.descEditor.Text()
		f.Deadline = task.Deadline(strings.TrimSpace(ui.deadlineEditor.Text()))
		if _, ok := f.Deadline.Time(); !f.Deadline.IsZero() && !ok {
			ui.setNotice("deadline must be YYYY-MM-DD")
			return
		}
		images := ui.images
		if ui.currentPage == pageAdd {
			v := ui.add
			ui.closeForm()
			go ui.submitAdd(v, images)
		} else {
			v := ui.edit
			ui.closeForm()
			go ui.save(v, images)
		}
	}
}

// attachPath queues a local image file for upload on save.
func (ui *UI) attachPath(path string) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		ui.setNotice("attach image: " + err.Error())
		return
	}
	if info.IsDir() {
		ui.setNotice("attach image: " + path + " is a directory")
		return
	}
	ui.images = append(ui.images, path)
	ui.imageEditor.SetText("")
}

func (ui *UI) openAdd() {
	ui.add = board.NewAddView(ui.store)
	ui.loadForm(&ui.add.Form, nil)
	ui.currentPage = pageAdd
}

// loadForm copies f into the page editors.
func (ui *UI) loadForm(f *board.Form, images []string) {
	ui.titleEditor.SetText(f.Title)
	ui.descEditor.SetText(f.Description)
	ui.deadlineEditor.SetText(string(f.Deadline))
	ui.bulletEditor.SetText("")
	ui.imageEditor.SetText("")
	ui.images = images
}

func (ui *UI) closeForm() {
	if ui.currentPage == pageAdd {
		ui.add = nil
		ui.currentPage = pageList
	} else {
		ui.edit = nil
		ui.currentPage = pageDetail
	}
	ui.images = nil
}

// restoreForm reopens a form whose submit failed, unless another form has
// been opened since.
func (ui *UI) restoreForm(page int, f *board.Form, images []string, keep func()) {
	ui.post(func() {
		if ui.form() != nil {
			return
		}
		keep()
		ui.loadForm(f, images)
		ui.currentPage = page
	})
}

func (ui *UI) card(id task.ID) *card {
	c, ok := ui.cards[id]
	if !ok {
		c = &card{}
		ui.cards[id] = c
	}
	return c
}

func (ui *UI) openDetail(id task.ID) {
	ui.currentPage = pageDetail
	go func() {
		c, cancel := ctx()
		defer cancel()
		ui.detail.Activate(c, id)
		ui.w.Invalidate()
	}()
}

// openEdit runs off the window goroutine; the loaded view is handed over
// through post.
func (ui *UI) openEdit(id task.ID) {
	v := board.NewEditView(ui.store)
	c, cancel := ctx()
	defer cancel()
	if err := v.Activate(c, id); err != nil {
		ui.setNotice("load task failed: " + err.Error())
		return
	}
	ui.post(func() {
		ui.edit = v
		ui.loadForm(&v.Form, nil)
		ui.currentPage = pageEdit
	})
}

// save and submitAdd run off the window goroutine and own v until they
// return or hand it back through restoreForm.
func (ui *UI) save(v *board.EditView, images []string) {
	keep := func() { ui.edit = v }
	closeAll, err := v.AttachFiles(images)
	if err != nil {
		ui.warn(err)
		ui.restoreForm(pageEdit, &v.Form, images, keep)
		return
	}
	defer closeAll()
	c, cancel := ctx()
	defer cancel()
	if _, err := v.Submit(c); err != nil {
		v.Uploads = nil
		ui.warn(err)
		ui.restoreForm(pageEdit, &v.Form, images, keep)
		return
	}
	ui.detail.Activate(c, v.ID())
	ui.setNotice("saved")
}

func (ui *UI) submitAdd(v *board.AddView, images []string) {
	keep := func() { ui.add = v }
	closeAll, err := v.AttachFiles(images)
	if err != nil {
		ui.warn(err)
		ui.restoreForm(pageAdd, &v.Form, images, keep)
		return
	}
	defer closeAll()
	c, cancel := ctx()
	defer cancel()
	if _, err := v.Submit(c); err != nil {
		v.Uploads = nil
		ui.warn(err)
		ui.restoreForm(pageAdd, &v.Form, images, keep)
		return
	}
	ui.setNotice("created")
}

func (ui *UI) create(title string) {
	v := board.NewAddView(ui.store)
	v.Title = title
	c, cancel := ctx()
	defer cancel()
	if _, err := v.Submit(c); err != nil {
		ui.warn(err)
	}
}

func (ui *UI) markComplete(id task.ID) {
	c, cancel := ctx()
	defer cancel()
	ui.list.MarkComplete(c, id)
}

func (ui *UI) deleteSelected() {
	c, cancel := ctx()
	defer cancel()
	if err := ui.list.DeleteSelected(c); err != nil {
		ui.warn(err)
	}
}

// warn puts err on the notice line. Transport failures also arrive through
// the change bus with the op name attached.
func (ui *UI) warn(err error) {
	switch {
	case errors.Is(err, task.ErrEmptyTitle):
		ui.setNotice("Title is required")
	case errors.Is(err, board.ErrEmptySelection):
		ui.setNotice("Select at least one task to delete")
	default:
		ui.setNotice(err.Error())
	}
}

func submitted(gtx layout.Context, ed *widget.Editor) bool {
	for {
		e, ok := ed.Update(gtx)
		if !ok {
			return false
		}
		if _, ok := e.(widget.SubmitEvent); ok {
			return true
		}
	}
}
