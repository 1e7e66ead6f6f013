package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chukwudi34/task-manager/internal/api"
	"github.com/chukwudi34/task-manager/internal/model"
	"github.com/chukwudi34/task-manager/internal/onboard"
	"github.com/chukwudi34/task-manager/internal/upgrade"
)

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	return ti
}

// focusInput moves focus inside a modal's input set.
func focusInput(inputs []textinput.Model, idx int) {
	for i := range inputs {
		if i == idx {
			inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
}

// ------- onboarding (add task, registering first when needed) -------

func (a App) openOnboard() (tea.Model, tea.Cmd) {
	a.flow = onboard.New(a.client, a.sess)
	a.obErrs = nil
	a.obFocus = 0
	a.obStatus = 0
	if a.flow.State() == onboard.CollectingIdentity {
		a.obInputs = []textinput.Model{newInput("Full Name"), newInput("Email")}
	} else {
		a.obInputs = []textinput.Model{newInput("Name"), newInput("Description")}
	}
	focusInput(a.obInputs, 0)
	a.mode = modeOnboard
	return a, textinput.Blink
}

func (a App) updateOnboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if isKey && !a.busy {
		switch key.String() {
		case "esc":
			// cancel: discard form state, nothing else happened
			a.mode = modeList
			a.flow = nil
			return a, nil
		case "tab", "shift+tab", "down", "up":
			fields := len(a.obInputs)
			if a.flow.State() == onboard.CollectingTask {
				fields++ // the status selector sits after the inputs
			}
			if key.String() == "shift+tab" || key.String() == "up" {
				a.obFocus = (a.obFocus + fields - 1) % fields
			} else {
				a.obFocus = (a.obFocus + 1) % fields
			}
			focusInput(a.obInputs, a.obFocus)
			return a, nil
		case "left", "right":
			if a.flow.State() == onboard.CollectingTask && a.obFocus == len(a.obInputs) {
				n := len(model.Statuses)
				if key.String() == "left" {
					a.obStatus = (a.obStatus + n - 1) % n
				} else {
					a.obStatus = (a.obStatus + 1) % n
				}
				return a, nil
			}
		case "enter":
			return a.submitOnboard()
		}
	}
	if a.busy {
		return a, nil
	}
	if a.obFocus < len(a.obInputs) {
		var cmd tea.Cmd
		a.obInputs[a.obFocus], cmd = a.obInputs[a.obFocus].Update(msg)
		// typing clears the field's error, like the original form did
		if isKey && a.obErrs != nil {
			delete(a.obErrs, a.obFieldName(a.obFocus))
		}
		return a, cmd
	}
	return a, nil
}

func (a App) obFieldName(idx int) string {
	if a.flow.State() == onboard.CollectingIdentity {
		return []string{"full_name", "email"}[idx]
	}
	return []string{"name", "description"}[idx]
}

func (a App) submitOnboard() (tea.Model, tea.Cmd) {
	flow := a.flow
	switch flow.State() {
	case onboard.CollectingIdentity:
		fullName, email := a.obInputs[0].Value(), a.obInputs[1].Value()
		if errs := flow.CheckIdentity(fullName, email); errs != nil {
			a.obErrs = errs
			return a, nil
		}
		a.busy = true
		a.obErrs = nil
		return a, func() tea.Msg {
			id, err := flow.RegisterIdentity(context.Background(), fullName, email)
			return userCreatedMsg{identity: id, err: err}
		}
	case onboard.CollectingTask:
		name, desc := a.obInputs[0].Value(), a.obInputs[1].Value()
		status := model.Statuses[a.obStatus]
		if errs := flow.CheckTask(name, desc, status); errs != nil {
			a.obErrs = errs
			return a, nil
		}
		a.busy = true
		a.obErrs = nil
		return a, func() tea.Msg {
			_, err := flow.SubmitTask(context.Background(), name, desc, status)
			return taskCreatedMsg{err: err}
		}
	}
	return a, nil
}

func (a App) onUserCreated(msg userCreatedMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if a.mode != modeOnboard || a.flow == nil {
		return a, nil
	}
	if msg.err != nil {
		a.obErrs = formErrors(msg.err, "Failed to save user. Please try again.")
		return a, nil
	}
	if err := a.flow.CommitIdentity(msg.identity); err != nil {
		a.obErrs = api.FieldErrors{api.GeneralField: "Failed to save user. Please try again."}
		return a, nil
	}
	// identity resolved: swap the form to the task step and start fetching
	a.obInputs = []textinput.Model{newInput("Name"), newInput("Description")}
	a.obFocus = 0
	a.obStatus = 0
	focusInput(a.obInputs, 0)
	spec := a.ctrl.SetIdentity(msg.identity)
	return a, tea.Batch(textinput.Blink, a.fetchCmd(spec))
}

func (a App) onTaskCreated(msg taskCreatedMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if a.mode != modeOnboard || a.flow == nil {
		return a, nil
	}
	if msg.err != nil {
		a.obErrs = formErrors(msg.err, "Something went wrong. Please try again.")
		return a, nil
	}
	a.flow.CommitTask()
	a.flow = nil
	a.mode = modeList
	a.notice, a.bad = "Task added.", false
	cmds := []tea.Cmd{noticeTimeout()}
	if spec, ok := a.ctrl.Invalidate("task added"); ok {
		cmds = append(cmds, a.fetchCmd(spec))
	}
	return a, tea.Batch(cmds...)
}

// formErrors maps a submit error into the shared form-error structure:
// server field errors land on their fields, anything else on the general row.
func formErrors(err error, generic string) api.FieldErrors {
	if fe, ok := api.AsFieldErrors(err); ok {
		return fe
	}
	return api.FieldErrors{api.GeneralField: generic}
}

// ------- view / edit -------

func (a App) openView(id string) (tea.Model, tea.Cmd) {
	a.mode = modeView
	a.viewID = id
	a.viewLoaded = false
	a.busy = true
	return a, a.loadTaskCmd(id)
}

func (a App) onTaskLoaded(msg taskLoadedMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if a.mode != modeView {
		return a, nil
	}
	if msg.err != nil {
		a.mode = modeList
		a.notice, a.bad = "Failed to fetch task.", true
		return a, noticeTimeout()
	}
	a.viewTask = msg.task
	a.viewLoaded = true
	return a, nil
}

func (a App) updateView(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey || a.busy {
		return a, nil
	}

	if a.mode == modeView {
		switch key.String() {
		case "esc", "q":
			a.mode = modeList
			return a, nil
		case "e":
			if !a.viewLoaded {
				return a, nil
			}
			a.mode = modeEdit
			a.editInputs = []textinput.Model{newInput("Task Name"), newInput("Description")}
			a.editInputs[0].SetValue(a.viewTask.Name)
			a.editInputs[1].SetValue(a.viewTask.Description)
			a.editStatus = statusIndex(a.viewTask.Status)
			a.editFocus = 0
			a.editErrs = nil
			focusInput(a.editInputs, 0)
			return a, textinput.Blink
		}
		return a, nil
	}

	// edit mode
	switch key.String() {
	case "esc":
		a.mode = modeView
		a.editErrs = nil
		return a, nil
	case "tab", "shift+tab", "down", "up":
		fields := len(a.editInputs) + 1
		if key.String() == "shift+tab" || key.String() == "up" {
			a.editFocus = (a.editFocus + fields - 1) % fields
		} else {
			a.editFocus = (a.editFocus + 1) % fields
		}
		focusInput(a.editInputs, a.editFocus)
		return a, nil
	case "left", "right":
		if a.editFocus == len(a.editInputs) {
			n := len(model.Statuses)
			if key.String() == "left" {
				a.editStatus = (a.editStatus + n - 1) % n
			} else {
				a.editStatus = (a.editStatus + 1) % n
			}
			return a, nil
		}
	case "enter":
		return a.submitEdit()
	}
	if a.editFocus < len(a.editInputs) {
		var cmd tea.Cmd
		a.editInputs[a.editFocus], cmd = a.editInputs[a.editFocus].Update(msg)
		return a, cmd
	}
	return a, nil
}

func statusIndex(s model.Status) int {
	for i, v := range model.Statuses {
		if v == s {
			return i
		}
	}
	return 0
}

func (a App) submitEdit() (tea.Model, tea.Cmd) {
	name, desc := a.editInputs[0].Value(), a.editInputs[1].Value()
	status := model.Statuses[a.editStatus]
	errs := api.FieldErrors{}
	if name == "" {
		errs["name"] = "Name is required"
	}
	if desc == "" {
		errs["description"] = "Description is required"
	}
	if len(errs) > 0 {
		a.editErrs = errs
		return a, nil
	}
	a.busy = true
	a.editErrs = nil
	client, id := a.client, a.viewID
	in := api.TaskInput{Name: name, Description: desc, Status: status}
	return a, func() tea.Msg {
		t, err := client.UpdateTask(context.Background(), id, in)
		return taskUpdatedMsg{task: t, err: err}
	}
}

func (a App) onTaskUpdated(msg taskUpdatedMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if a.mode != modeEdit {
		return a, nil
	}
	if msg.err != nil {
		a.notice, a.bad = "Failed to update task.", true
		return a, noticeTimeout()
	}
	a.mode = modeList
	a.notice, a.bad = "Task updated successfully!", false
	cmds := []tea.Cmd{noticeTimeout()}
	if spec, ok := a.ctrl.Invalidate("task edited"); ok {
		cmds = append(cmds, a.fetchCmd(spec))
	}
	return a, tea.Batch(cmds...)
}

// ------- delete confirmation -------

func (a App) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return a, nil
	}
	switch key.String() {
	case "y", "enter":
		a.mode = modeList
		a.busy = true
		return a, a.deleteCmd(a.deleteID)
	case "n", "esc":
		a.mode = modeList
		a.deleteID = ""
	}
	return a, nil
}

// ------- upgrade -------

func (a App) openUpgrade() (tea.Model, tea.Cmd) {
	a.up = upgrade.New(a.client, a.sess, a.cfg.Amount, a.ctrl.Identity().ID)
	a.upStage = 0
	a.upErr = ""
	a.upFocus = 0
	a.upInputs = []textinput.Model{newInput("Full Name"), newInput("Email Address")}
	if id, ok, err := a.sess.Identity(); err == nil && ok {
		a.upInputs[0].SetValue(id.FullName)
		a.upInputs[1].SetValue(id.Email)
	}
	focusInput(a.upInputs, 0)
	a.mode = modeUpgrade
	return a, textinput.Blink
}

func (a App) updateUpgrade(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey || a.busy {
		return a, nil
	}

	switch key.String() {
	case "esc":
		// closing the widget (or the surface) without payment: no
		// initialization, no verification, entitlement untouched
		a.mode = modeList
		a.up = nil
		return a, nil
	case "tab", "shift+tab", "down", "up":
		if a.upStage == 0 {
			// two fields, so forward and backward are the same hop
			a.upFocus = (a.upFocus + 1) % 2
			focusInput(a.upInputs, a.upFocus)
		}
		return a, nil
	case "enter":
		return a.advanceUpgrade()
	}

	if a.upStage == 0 {
		var cmd tea.Cmd
		a.upInputs[a.upFocus], cmd = a.upInputs[a.upFocus].Update(msg)
		a.up.SetDetails(a.upInputs[0].Value(), a.upInputs[1].Value())
		return a, cmd
	}
	// widget stage: the reference input is the last element of upInputs
	var cmd tea.Cmd
	a.upInputs[len(a.upInputs)-1], cmd = a.upInputs[len(a.upInputs)-1].Update(msg)
	return a, cmd
}

func (a App) advanceUpgrade() (tea.Model, tea.Cmd) {
	switch a.upStage {
	case 0:
		a.up.SetDetails(a.upInputs[0].Value(), a.upInputs[1].Value())
		if !a.up.PayEnabled() {
			// the payment action stays disabled until both fields are set
			return a, nil
		}
		// hand over to the payment widget: it reports back a reference
		ref := newInput("Payment reference")
		ref.SetValue(upgrade.NewReference())
		ref.Focus()
		a.upInputs = append(a.upInputs, ref)
		a.upStage = 1
		a.upErr = ""
		return a, textinput.Blink
	case 1:
		reference := a.upInputs[len(a.upInputs)-1].Value()
		if reference == "" {
			a.upErr = "Payment reference is required."
			return a, nil
		}
		a.busy = true
		a.upErr = ""
		flow := a.up
		return a, func() tea.Msg {
			// initialize first; verify needs the transaction id it returns
			att, err := flow.Initialize(context.Background(), reference)
			if err != nil {
				return payDoneMsg{err: err}
			}
			res, err := att.Verify(context.Background())
			if err != nil {
				return payDoneMsg{err: err}
			}
			return payDoneMsg{result: res}
		}
	}
	return a, nil
}

func (a App) onPayDone(msg payDoneMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if a.mode != modeUpgrade || a.up == nil {
		return a, nil
	}
	if msg.err != nil {
		// the attempt is over; entitlement stays unapproved and the
		// free-task gate still applies
		a.upErr = remoteMessage(msg.err, "Payment failed")
		return a, nil
	}
	if err := a.up.CommitApproval(msg.result.Entitlement); err != nil {
		a.upErr = "Payment verified but could not be saved."
		return a, nil
	}
	a.mode = modeList
	a.up = nil
	notice := msg.result.Message
	if notice == "" {
		notice = "Upgrade successful."
	}
	a.notice, a.bad = notice, false
	return a, noticeTimeout()
}

// remoteMessage prefers the server's message over a generic one.
func remoteMessage(err error, generic string) string {
	var re *api.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return generic
}
