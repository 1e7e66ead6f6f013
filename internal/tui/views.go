package tui

import (
	"fmt"
	"strings"

	"github.com/chukwudi34/task-manager/internal/api"
	"github.com/chukwudi34/task-manager/internal/model"
	"github.com/chukwudi34/task-manager/internal/onboard"
	"github.com/chukwudi34/task-manager/internal/tasks"
)

func (a App) View() string {
	switch a.mode {
	case modeOnboard:
		return panelString(a.viewOnboard())
	case modeView, modeEdit:
		return panelString(a.viewTaskModal())
	case modeConfirmDelete:
		return panelString(a.viewConfirm())
	case modeUpgrade:
		return panelString(a.viewUpgrade())
	}
	return panelString(a.viewList())
}

// ------- task list -------

func (a App) viewList() string {
	var b strings.Builder

	visible := a.ctrl.Visible()
	b.WriteString(fmt.Sprintf("%s   %s %d\n",
		titleStyle.Render("Tasks"),
		accentStyle.Render("Total"), a.ctrl.Count(),
	))
	b.WriteString(a.planBadge() + "\n")

	if a.ctrl.AtFreeLimit() {
		b.WriteString(bannerStyle.Render(
			"You have reached your free limit of 5 tasks. Upgrade to Pro for unlimited tasks.") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(a.viewFilters() + "\n\n")

	switch {
	case !a.ctrl.HasIdentity():
		b.WriteString(mutedStyle.Render("No account yet. Press 'a' to add your first task.") + "\n")
	case a.ctrl.Loading():
		b.WriteString(a.spin.View() + mutedStyle.Render(" Loading tasks...") + "\n")
	case a.ctrl.Err() != "":
		b.WriteString(errorStyle.Render(a.ctrl.Err()) + "\n")
	case len(visible) == 0:
		b.WriteString(mutedStyle.Render("No Record Found") + "\n")
	default:
		for i, t := range visible {
			b.WriteString(a.taskRow(i, t) + "\n")
		}
	}

	b.WriteString("\n" + a.statusLine())
	b.WriteString("\n" + helpStyle.Render(
		"a add • enter view • d delete • / search • s status • D date • r refresh • q quit"))
	return b.String()
}

func (a App) taskRow(index int, t model.Task) string {
	prefix := "  "
	if index == a.cursor {
		prefix = selectedStyle.Render("> ")
	}
	day := t.CreatedDay()
	if day == "" {
		day = "          "
	}
	return fmt.Sprintf("%s%s  %s  %s",
		prefix,
		statusStyle(t.Status).Render(fmt.Sprintf("%-11s", t.Status.Label())),
		mutedStyle.Render(day),
		t.Name,
	)
}

func (a App) planBadge() string {
	if a.sess.IsUnlimited() {
		return badgeProStyle.Render("Pro Plan (Unlimited Tasks)")
	}
	return badgeFreeStyle.Render(fmt.Sprintf("Free Plan, %d Tasks Limit", tasks.FreeLimit))
}

func (a App) viewFilters() string {
	status := "All Status"
	if s := statusFilters[a.statusIdx]; s != "" {
		status = s.Label()
	}
	return fmt.Sprintf("%s\n%s   %s   %s",
		mutedStyle.Render("Filter"),
		a.search.View(),
		a.dateFilter.View(),
		accentStyle.Render("["+status+"]"),
	)
}

func (a App) statusLine() string {
	if a.busy {
		return a.spin.View() + mutedStyle.Render(" working...")
	}
	if a.notice == "" {
		return ""
	}
	if a.bad {
		return errorStyle.Render("✖ " + a.notice)
	}
	return successStyle.Render("✔ " + a.notice)
}

// ------- modal views -------

func fieldError(errs api.FieldErrors, field string) string {
	if errs == nil {
		return ""
	}
	if msg, ok := errs[field]; ok {
		return "  " + errorStyle.Render(msg)
	}
	return ""
}

func (a App) viewOnboard() string {
	var b strings.Builder
	if a.flow.State() == onboard.CollectingIdentity {
		b.WriteString(titleStyle.Render("Add Task: your details first") + "\n\n")
		b.WriteString("Full Name\n" + a.obInputs[0].View() + fieldError(a.obErrs, "full_name") + "\n")
		b.WriteString("Email\n" + a.obInputs[1].View() + fieldError(a.obErrs, "email") + "\n")
	} else {
		b.WriteString(titleStyle.Render("Add Task") + "\n\n")
		b.WriteString("Name\n" + a.obInputs[0].View() + fieldError(a.obErrs, "name") + "\n")
		b.WriteString("Description\n" + a.obInputs[1].View() + fieldError(a.obErrs, "description") + "\n")
		b.WriteString("Status  " + a.statusSelector(a.obStatus, a.obFocus == len(a.obInputs)) +
			fieldError(a.obErrs, "status") + "\n")
	}
	if msg, ok := a.obErrs[api.GeneralField]; ok {
		b.WriteString("\n" + errorStyle.Render(msg) + "\n")
	}
	if a.busy {
		b.WriteString("\n" + a.spin.View() + mutedStyle.Render(" saving..."))
	} else {
		b.WriteString("\n" + helpStyle.Render("enter continue • tab next field • esc cancel"))
	}
	return b.String()
}

func (a App) statusSelector(idx int, focused bool) string {
	parts := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		label := s.Label()
		if i == idx {
			if focused {
				label = selectedStyle.Render(label)
			} else {
				label = accentStyle.Render("[" + label + "]")
			}
		} else {
			label = mutedStyle.Render(label)
		}
		parts[i] = label
	}
	return strings.Join(parts, "  ")
}

func (a App) viewTaskModal() string {
	var b strings.Builder
	if a.mode == modeView {
		b.WriteString(titleStyle.Render("View Task") + "\n\n")
		if !a.viewLoaded {
			b.WriteString(a.spin.View() + mutedStyle.Render(" Loading task..."))
			return b.String()
		}
		t := a.viewTask
		b.WriteString("Name:        " + t.Name + "\n")
		b.WriteString("Description: " + t.Description + "\n")
		b.WriteString("Status:      " + statusStyle(t.Status).Render(t.Status.Label()) + "\n")
		if day := t.CreatedDay(); day != "" {
			b.WriteString("Created:     " + mutedStyle.Render(day) + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("e edit • esc close"))
		return b.String()
	}

	b.WriteString(titleStyle.Render("Edit Task") + "\n\n")
	b.WriteString("Name\n" + a.editInputs[0].View() + fieldError(a.editErrs, "name") + "\n")
	b.WriteString("Description\n" + a.editInputs[1].View() + fieldError(a.editErrs, "description") + "\n")
	b.WriteString("Status  " + a.statusSelector(a.editStatus, a.editFocus == len(a.editInputs)) + "\n")
	if a.busy {
		b.WriteString("\n" + a.spin.View() + mutedStyle.Render(" saving..."))
	} else {
		b.WriteString("\n" + helpStyle.Render("enter update • tab next field • esc back"))
	}
	return b.String()
}

func (a App) viewConfirm() string {
	return titleStyle.Render("Are you sure?") + "\n\n" +
		"Do you really want to delete this task?\n\n" +
		helpStyle.Render("y delete • n keep")
}

func (a App) viewUpgrade() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Upgrade to Pro") + "\n\n")

	if a.upStage == 0 {
		b.WriteString("Full Name\n" + a.upInputs[0].View() + "\n")
		b.WriteString("Email Address\n" + a.upInputs[1].View() + "\n\n")
		if a.up.PayEnabled() {
			b.WriteString(helpStyle.Render("enter proceed to payment • esc cancel"))
		} else {
			// the payment action is disabled until both fields are filled
			b.WriteString(mutedStyle.Render("Proceed to Payment (fill in both fields)"))
		}
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Amount: %d   Plan: Pro\n", a.cfg.Amount))
	if a.cfg.PaystackKey != "" {
		b.WriteString(mutedStyle.Render("Channel key: "+a.cfg.PaystackKey) + "\n")
	}
	b.WriteString("\nComplete the payment in your payment channel, then confirm\nthe reference below.\n\n")
	b.WriteString(a.upInputs[len(a.upInputs)-1].View() + "\n")
	if a.upErr != "" {
		b.WriteString("\n" + errorStyle.Render(a.upErr) + "\n")
	}
	if a.busy {
		b.WriteString("\n" + a.spin.View() + mutedStyle.Render(" verifying payment..."))
	} else {
		b.WriteString("\n" + helpStyle.Render("enter confirm payment • esc close without paying"))
	}
	return b.String()
}
