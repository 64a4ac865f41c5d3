package main

import (
	"fmt"
	"image/color"

	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"todoboard/pkg/board"
	"todoboard/pkg/task"
)

var (
	grey    = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	red     = color.NRGBA{R: 0xFF, G: 0x40, B: 0x40, A: 0xFF}
	green   = color.NRGBA{R: 0x00, G: 0xC0, B: 0x00, A: 0xFF}
	amber   = color.NRGBA{R: 0xFF, G: 0xA0, B: 0x00, A: 0xFF}
	danger  = color.NRGBA{R: 0xC0, G: 0x30, B: 0x30, A: 0xFF}
	cardBdr = color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF}
)

type (
	C = layout.Context
	D = layout.Dimensions
)

func (ui *UI) layout(gtx C) D {
	return layout.Inset{Top: unit.Dp(16), Right: unit.Dp(16), Bottom: unit.Dp(16), Left: unit.Dp(16)}.Layout(gtx, func(gtx C) D {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(ui.layoutNotice),
			layout.Flexed(1, func(gtx C) D {
				switch ui.currentPage {
				case pageDetail:
					return ui.layoutDetail(gtx)
				case pageAdd, pageEdit:
					return ui.layoutForm(gtx)
				default:
					return ui.layoutList(gtx)
				}
			}),
		)
	})
}

func (ui *UI) layoutNotice(gtx C) D {
	msg := ui.getNotice()
	if msg == "" {
		return D{}
	}
	return layout.Inset{Bottom: unit.Dp(8)}.Layout(gtx, func(gtx C) D {
		label := material.Body2(theme, msg)
		label.Color = amber
		return label.Layout(gtx)
	})
}

func (ui *UI) layoutList(gtx C) D {
	tasks := ui.list.Tasks()
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return material.H5(theme, "Tasks").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx C) D {
			return layout.Flex{}.Layout(gtx,
				layout.Flexed(1, func(gtx C) D {
					return material.Editor(theme, &ui.newTaskEditor, "New task title...").Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx C) D {
					return material.Button(theme, &ui.createTaskBtn, "Create").Layout(gtx)
				}),
			)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(ui.layoutToolbar),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Flexed(1, func(gtx C) D {
			return material.List(theme, &ui.taskList).Layout(gtx, len(tasks), func(gtx C, i int) D {
				return ui.layoutCard(gtx, tasks[i])
			})
		}),
	)
}

func (ui *UI) layoutToolbar(gtx C) D {
	if !ui.list.MultiDelete() {
		return layout.Flex{}.Layout(gtx,
			layout.Rigid(func(gtx C) D {
				return material.Button(theme, &ui.refreshBtn, "Refresh").Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx C) D {
				return material.Button(theme, &ui.newFormBtn, "New Task").Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx C) D {
				btn := material.Button(theme, &ui.deleteModeBtn, "Delete")
				btn.Background = danger
				return btn.Layout(gtx)
			}),
		)
	}
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			btn := material.Button(theme, &ui.deleteSelBtn, fmt.Sprintf("Delete Selected (%d)", len(ui.list.Selected())))
			btn.Background = danger
			return btn.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx C) D {
			return material.Button(theme, &ui.cancelBtn, "Cancel").Layout(gtx)
		}),
	)
}

func (ui *UI) layoutCard(gtx C, t task.Task) D {
	c := ui.card(t.ID)
	selecting := ui.list.MultiDelete()
	return layout.Inset{Bottom: unit.Dp(8)}.Layout(gtx, func(gtx C) D {
		border := widget.Border{Color: cardBdr, CornerRadius: unit.Dp(4), Width: unit.Dp(1)}
		if selecting && ui.list.IsSelected(t.ID) {
			border.Color = theme.Palette.ContrastBg
			border.Width = unit.Dp(2)
		}
		return border.Layout(gtx, func(gtx C) D {
			return material.Clickable(gtx, &c.open, func(gtx C) D {
				return layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx C) D {
					return ui.layoutCardBody(gtx, t, c, selecting)
				})
			})
		})
	})
}

func (ui *UI) layoutCardBody(gtx C, t task.Task, c *card, selecting bool) D {
	children := []layout.FlexChild{
		layout.Rigid(func(gtx C) D {
			title := t.Title
			if selecting {
				mark := "[ ] "
				if ui.list.IsSelected(t.ID) {
					mark = "[x] "
				}
				title = mark + title
			}
			label := material.Body1(theme, title)
			label.Font.Weight = font.Bold
			return label.Layout(gtx)
		}),
	}
	if d := t.Deadline.Display(); d != "" {
		children = append(children, layout.Rigid(func(gtx C) D {
			label := material.Caption(theme, "Deadline: "+d)
			label.Color = grey
			if ui.list.IsOverdue(t) {
				label.Text += " (overdue)"
				label.Color = red
			}
			return label.Layout(gtx)
		}))
	}
	if t.Description != "" {
		children = append(children, layout.Rigid(material.Body2(theme, t.Description).Layout))
	}
	for _, b := range t.Bullets {
		children = append(children, layout.Rigid(material.Body2(theme, "• "+b).Layout))
	}
	children = append(children,
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx C) D {
			if t.Completed {
				gtx = gtx.Disabled()
				btn := material.Button(theme, &c.complete, "Completed")
				btn.Background = green
				return btn.Layout(gtx)
			}
			return material.Button(theme, &c.complete, "Mark as Completed").Layout(gtx)
		}),
	)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (ui *UI) layoutDetail(gtx C) D {
	header := layout.Rigid(func(gtx C) D {
		return layout.Flex{}.Layout(gtx,
			layout.Rigid(func(gtx C) D {
				return material.Button(theme, &ui.backBtn, "Back").Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx C) D {
				if ui.detail.State() != board.Loaded {
					gtx = gtx.Disabled()
				}
				return material.Button(theme, &ui.editBtn, "Edit").Layout(gtx)
			}),
		)
	})

	var body []layout.Widget
	switch ui.detail.State() {
	case board.Loading:
		body = append(body, material.Body1(theme, "Loading...").Layout)
	case board.Failed:
		label := material.Body1(theme, "Could not load task: "+ui.detail.Err().Error())
		label.Color = red
		body = append(body, label.Layout)
	default:
		body = detailWidgets(ui.detail.Task())
	}

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		header,
		layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
		layout.Flexed(1, func(gtx C) D {
			return material.List(theme, &ui.detailList).Layout(gtx, len(body), func(gtx C, i int) D {
				return layout.Inset{Bottom: unit.Dp(6)}.Layout(gtx, body[i])
			})
		}),
	)
}

func detailWidgets(t task.Task) []layout.Widget {
	status := material.Caption(theme, "Open")
	status.Color = amber
	if t.Completed {
		status.Text, status.Color = "Completed", green
	}
	out := []layout.Widget{
		material.H5(theme, t.Title).Layout,
		status.Layout,
	}
	if d := t.Deadline.Display(); d != "" {
		out = append(out, material.Body2(theme, "Deadline: "+d).Layout)
	}
	if t.Description != "" {
		out = append(out, material.Body1(theme, t.Description).Layout)
	}
	for _, b := range t.Bullets {
		out = append(out, material.Body1(theme, "• "+b).Layout)
	}
	for _, u := range t.Images {
		label := material.Caption(theme, u)
		label.Color = theme.Palette.ContrastBg
		out = append(out, label.Layout)
	}
	return out
}

func (ui *UI) layoutForm(gtx C) D {
	v := ui.form()
	if v == nil {
		return material.Body1(theme, "Loading...").Layout(gtx)
	}
	for len(ui.removeBullet) < len(v.Bullets) {
		ui.removeBullet = append(ui.removeBullet, widget.Clickable{})
	}
	for len(ui.removeImage) < len(ui.images) {
		ui.removeImage = append(ui.removeImage, widget.Clickable{})
	}
	heading := "Edit Task"
	if ui.currentPage == pageAdd {
		heading = "New Task"
	}

	field := func(label string, ed *widget.Editor, hint string) layout.Widget {
		return func(gtx C) D {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(material.Caption(theme, label).Layout),
				layout.Rigid(material.Editor(theme, ed, hint).Layout),
			)
		}
	}
	rows := []layout.Widget{
		material.H5(theme, heading).Layout,
		field("Title", &ui.titleEditor, "Title"),
		field("Description", &ui.descEditor, "Description"),
		field("Deadline", &ui.deadlineEditor, "YYYY-MM-DD"),
		material.Caption(theme, "Bullets").Layout,
	}
	for i, b := range v.Bullets {
		rows = append(rows, func(gtx C) D {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, material.Body1(theme, "• "+b).Layout),
				layout.Rigid(func(gtx C) D {
					btn := material.Button(theme, &ui.removeBullet[i], "Remove")
					btn.Background = danger
					return btn.Layout(gtx)
				}),
			)
		})
	}
	rows = append(rows,
		func(gtx C) D {
			return layout.Flex{}.Layout(gtx,
				layout.Flexed(1, material.Editor(theme, &ui.bulletEditor, "New bullet...").Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(material.Button(theme, &ui.addBulletBtn, "Add").Layout),
			)
		},
		material.Caption(theme, "Images").Layout,
	)
	for i, path := range ui.images {
		rows = append(rows, func(gtx C) D {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, material.Body2(theme, path).Layout),
				layout.Rigid(func(gtx C) D {
					btn := material.Button(theme, &ui.removeImage[i], "Remove")
					btn.Background = danger
					return btn.Layout(gtx)
				}),
			)
		})
	}
	rows = append(rows,
		func(gtx C) D {
			return layout.Flex{}.Layout(gtx,
				layout.Flexed(1, material.Editor(theme, &ui.imageEditor, "Image file path...").Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(material.Button(theme, &ui.attachBtn, "Attach").Layout),
			)
		},
		func(gtx C) D {
			return layout.Flex{}.Layout(gtx,
				layout.Rigid(material.Button(theme, &ui.saveBtn, "Save").Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(material.Button(theme, &ui.cancelEditBtn, "Cancel").Layout),
			)
		},
	)
	return material.List(theme, &ui.formList).Layout(gtx, len(rows), func(gtx C, i int) D {
		return layout.Inset{Bottom: unit.Dp(8)}.Layout(gtx, rows[i])
	})
}
