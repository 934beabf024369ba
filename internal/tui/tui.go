package tui

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	"github.com/taskdeck/taskdeck/internal/bus"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/state"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewTasks   = "tasks"
	viewForm    = "form"
	viewConfirm = "confirm"
	viewNotice  = "notice"
)

const defaultNoticeTTL = 2500 * time.Millisecond

type UI struct {
	store  *state.Store
	events *bus.Bus
	gui    *gocui.Gui

	tasks   []model.Task
	loading state.Loading
	lastErr string

	selected int
	focus    string

	form       *formState
	formEditor *formEditor
	confirm    *confirmState
	notice     *noticeState
	noticeTTL  time.Duration
	status     string
}

type formState struct {
	fields []formField
	index  int
}

type formEditor struct {
	ui *UI
}

type confirmState struct {
	task model.Task
}

type noticeState struct {
	kind    noticeKind
	message string
	timer   *time.Timer
}

type noticeKind string

const (
	noticeSuccess noticeKind = "success"
	noticeError   noticeKind = "error"
	noticeInfo    noticeKind = "info"
	noticeWarning noticeKind = "warning"
)

func Run(store *state.Store, events *bus.Bus) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := &UI{
		store:     store,
		events:    events,
		gui:       gui,
		focus:     viewTasks,
		noticeTTL: defaultNoticeTTL,
	}
	ui.formEditor = &formEditor{ui: ui}

	store.OnChange(func() {
		gui.Update(func(*gocui.Gui) error {
			ui.syncState()
			return nil
		})
	})
	events.Subscribe(bus.TaskAdded, func(bus.Event) { ui.reloadInBackground() })
	events.Subscribe(bus.TaskCompleted, func(bus.Event) { ui.reloadInBackground() })

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}

	ui.reloadInBackground()

	err = gui.MainLoop()
	ui.stopNoticeTimer()
	if err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'q', gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'r', gocui.ModNone, u.reload); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'a', gocui.ModNone, u.openForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, 'j', gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, 'k', gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, 'x', gocui.ModNone, u.openConfirm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, gocui.KeyEnter, gocui.ModNone, u.openConfirm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewConfirm, gocui.KeyEnter, gocui.ModNone, u.acceptConfirm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewConfirm, gocui.KeyEsc, gocui.ModNone, u.cancelConfirm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewNotice, gocui.KeyEsc, gocui.ModNone, u.dismissNotice); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewNotice, gocui.KeyEnter, gocui.ModNone, u.dismissNotice); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	u.renderHeader(headerView)

	footerY1 := maxY - 1
	if footerY1 < 1 {
		footerY1 = 1
	}
	footerY0 := footerY1 - 2
	if footerY0 < 1 {
		footerY0 = 1
	}
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	tasksView, err := gui.SetView(viewTasks, 0, bodyTop, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tasksView.Title = "Pending Tasks"
		tasksView.TitleColor = gocui.ColorCyan
	}
	applyViewStyle(tasksView, u.focus == viewTasks && !u.modalActive())
	u.renderTasks(tasksView)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.confirm != nil {
		if err := u.showConfirm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewConfirm)
	}

	if u.notice != nil {
		if err := u.showNoticeView(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewNotice)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.form != nil

	return nil
}

func (u *UI) syncState() {
	u.tasks, u.loading, u.lastErr = u.store.Snapshot()
	if u.selected >= len(u.tasks) {
		u.selected = max(len(u.tasks)-1, 0)
	}
}

func (u *UI) reloadInBackground() {
	go func() {
		if err := u.store.LoadTasks(context.Background()); err != nil && err != state.ErrBusy {
			u.postStatus(err.Error())
		}
	}()
}

func (u *UI) postStatus(text string) {
	u.gui.Update(func(*gocui.Gui) error {
		u.status = text
		return nil
	})
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	errLabel := ""
	if u.lastErr != "" {
		errLabel = fmt.Sprintf(" | error: %s", u.lastErr)
	}
	fmt.Fprintf(view, "taskdeck | %d pending%s", len(u.tasks), errLabel)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	fmt.Fprintln(view, "a add | x/enter complete | j/k move | r reload | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTasks(view *gocui.View) {
	view.Clear()

	if u.loading.Tasks && len(u.tasks) == 0 {
		for _, row := range skeletonRows(3) {
			fmt.Fprintln(view, row)
		}
		return
	}

	if len(u.tasks) == 0 {
		fmt.Fprintln(view, "")
		fmt.Fprintln(view, "  All clear. Press 'a' to add a task.")
		return
	}

	focused := u.focus == viewTasks && !u.modalActive()
	for i, task := range u.tasks {
		prefix := " "
		if i == u.selected {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskRow(task))
	}
	if focused {
		view.SetCursor(0, min(u.selected, len(u.tasks)-1))
	}
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.modalActive() {
		return nil
	}
	if u.selected < len(u.tasks)-1 {
		u.selected++
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.modalActive() {
		return nil
	}
	if u.selected > 0 {
		u.selected--
	}
	return nil
}

func (u *UI) reload(gui *gocui.Gui, _ *gocui.View) error {
	if u.modalActive() {
		return nil
	}
	u.status = ""
	u.reloadInBackground()
	return nil
}

func (u *UI) openForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.modalActive() {
		return nil
	}
	u.form = &formState{fields: buildFormFields()}
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(50, maxX/2)
	height := 5
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = "New Task"
	if u.loading.Create {
		view.Title = "New Task (saving...)"
	}
	view.Wrap = true
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	if u.loading.Create {
		fmt.Fprint(view, "\n  saving...")
	}
	label := u.form.fields[u.form.index].Label + ": "
	cursorX := len([]rune(label)) + len([]rune(u.form.fields[u.form.index].Value)) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil || u.loading.Create {
		return nil
	}

	input, err := parseForm(u.form.fields)
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""

	go func() {
		created, err := u.store.AddTask(context.Background(), input)
		u.gui.Update(func(*gocui.Gui) error {
			if err != nil {
				if err != state.ErrBusy {
					u.showNotice(noticeError, err.Error())
				}
				return nil
			}
			u.form = nil
			u.showNotice(noticeSuccess, fmt.Sprintf("Task %q created.", created.Title))
			return nil
		})
	}()
	return nil
}

func (u *UI) nextFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.loading.Create {
		return nil
	}
	u.form = nil
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) openConfirm(gui *gocui.Gui, _ *gocui.View) error {
	if u.modalActive() {
		return nil
	}
	if u.selected < 0 || u.selected >= len(u.tasks) {
		return nil
	}
	u.confirm = &confirmState{task: u.tasks[u.selected]}
	return nil
}

func (u *UI) showConfirm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(44, maxX/3)
	height := 4
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewConfirm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = "Complete Task"
	view.Wrap = true
	view.Clear()
	fmt.Fprintf(view, "Mark %q as done?\n", truncate(u.confirm.task.Title, width-18))
	if u.loading.Complete {
		fmt.Fprint(view, "working...")
	} else {
		fmt.Fprint(view, "enter confirm | esc cancel")
	}
	_, _ = gui.SetCurrentView(viewConfirm)
	return nil
}

func (u *UI) acceptConfirm(gui *gocui.Gui, _ *gocui.View) error {
	if u.confirm == nil || u.loading.Complete {
		return nil
	}
	taskID := u.confirm.task.ID
	title := u.confirm.task.Title

	go func() {
		err := u.store.CompleteTask(context.Background(), taskID)
		u.gui.Update(func(*gocui.Gui) error {
			u.confirm = nil
			if err != nil {
				if err != state.ErrBusy {
					u.showNotice(noticeError, err.Error())
				}
				return nil
			}
			u.showNotice(noticeSuccess, fmt.Sprintf("Task %q completed.", title))
			return nil
		})
	}()
	return nil
}

func (u *UI) cancelConfirm(gui *gocui.Gui, _ *gocui.View) error {
	if u.confirm == nil || u.loading.Complete {
		return nil
	}
	u.confirm = nil
	_ = gui.DeleteView(viewConfirm)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

// showNotice replaces any visible notice and restarts the dismissal timer.
func (u *UI) showNotice(kind noticeKind, message string) {
	u.stopNoticeTimer()
	u.notice = &noticeState{kind: kind, message: message}
	u.notice.timer = time.AfterFunc(u.noticeTTL, func() {
		u.gui.Update(func(*gocui.Gui) error {
			u.closeNotice()
			return nil
		})
	})
}

func (u *UI) showNoticeView(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(40, maxX/3)
	height := 3
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewNotice, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = noticeTitle(u.notice.kind)
	view.TitleColor = noticeColor(u.notice.kind)
	view.FrameColor = noticeColor(u.notice.kind)
	view.Wrap = true
	view.Clear()
	fmt.Fprint(view, u.notice.message)
	_, _ = gui.SetCurrentView(viewNotice)
	return nil
}

func (u *UI) dismissNotice(gui *gocui.Gui, _ *gocui.View) error {
	u.closeNotice()
	_ = gui.DeleteView(viewNotice)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

// closeNotice clears the notice and stops its timer so no dismissal callback
// fires after the view is gone.
func (u *UI) closeNotice() {
	u.stopNoticeTimer()
	u.notice = nil
}

func (u *UI) stopNoticeTimer() {
	if u.notice != nil && u.notice.timer != nil {
		u.notice.timer.Stop()
		u.notice.timer = nil
	}
}

func (u *UI) modalActive() bool {
	return u.form != nil || u.confirm != nil || u.notice != nil
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	return gocui.ErrQuit
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	if ui.loading.Create {
		return true
	}
	field := &ui.form.fields[ui.form.index]

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func noticeTitle(kind noticeKind) string {
	switch kind {
	case noticeSuccess:
		return "Success"
	case noticeError:
		return "Error"
	case noticeWarning:
		return "Warning"
	default:
		return "Info"
	}
}

func noticeColor(kind noticeKind) gocui.Attribute {
	switch kind {
	case noticeSuccess:
		return gocui.ColorGreen
	case noticeError:
		return gocui.ColorRed
	case noticeWarning:
		return gocui.ColorYellow
	default:
		return gocui.ColorCyan
	}
}

func applyViewStyle(view *gocui.View, focused bool) {
	view.Frame = true
	view.Highlight = focused
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
