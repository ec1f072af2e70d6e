package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/edushop/internal/database/repository"
)

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Underline(true)
	tabStyle          = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#7f849c"))
	activeTabStyle    = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#cdd6f4")).Background(lipgloss.Color("#45475a"))
	chipStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#bac2de"))
	activeChipStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a6e3a1"))
	priceStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387"))
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	labelStyle        = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("#bac2de"))
	focusedLabelStyle = labelStyle.Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	modalStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("#89b4fa"))
)

const titleWidth = 36

func (a *App) View() string {
	var body string
	switch a.state {
	case viewDetail:
		body = a.renderDetail()
	case viewCart:
		body = a.renderCart()
	case viewProfile:
		body = a.renderProfile()
	case viewLogin:
		body = a.login.view(a.stores.Session.IsLoading()) + "\n" +
			helpLine(a.keys.Submit, a.keys.NextField, a.keys.Back)
	case viewRegister:
		body = a.register.view(a.stores.Session.IsLoading()) + "\n" +
			helpLine(a.keys.Submit, a.keys.NextField, a.keys.Back)
	default:
		body = a.renderCatalog()
	}
	out := a.renderTabs() + "\n\n" + body
	if a.modal != modalNone {
		out += "\n\n" + a.renderModal()
	}
	if a.status != "" {
		out += "\n" + statusStyle.Render(a.status)
	}
	return out
}

func (a *App) renderTabs() string {
	cartLabel := "Cart"
	if n := a.stores.Cart.Count(); n > 0 {
		cartLabel = fmt.Sprintf("Cart (%d)", n)
	}
	tabs := []struct {
		label string
		on    bool
	}{
		{"Catalog", a.state == viewCatalog || a.state == viewDetail},
		{cartLabel, a.state == viewCart},
		{"Profile", a.state == viewProfile || a.state == viewLogin || a.state == viewRegister},
	}
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.on {
			parts = append(parts, activeTabStyle.Render(t.label))
		} else {
			parts = append(parts, tabStyle.Render(t.label))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if a.busy() {
		line += " " + a.spinner.View()
	}
	return line
}

func (a *App) renderCatalog() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Courses") + "\n")

	if a.stores.Catalog.Loading() || (!a.stores.Catalog.Loaded() && a.loadErr == nil) {
		b.WriteString(mutedStyle.Render("loading catalog...") + "\n")
		return b.String()
	}
	if a.loadErr != nil {
		b.WriteString(errorStyle.Render("could not load the catalog: "+a.loadErr.Error()) + "\n")
		return b.String()
	}

	b.WriteString(a.search.View() + "\n")
	b.WriteString(a.renderCategories() + "\n\n")

	v := a.stores.Search.Current()
	switch {
	case v.Searching:
		b.WriteString(mutedStyle.Render("searching...") + "\n")
	case len(v.Courses) == 0:
		b.WriteString(mutedStyle.Render("No courses found.") + "\n")
		if s := a.suggestion(); s != "" {
			b.WriteString(fmt.Sprintf("Did you mean %q? ", s) + helpLine(a.keys.Suggestion) + "\n")
		}
	default:
		for i, c := range v.Courses {
			marker := " "
			if i == a.catCursor {
				marker = "▶"
			}
			inCart := " "
			if a.stores.Cart.Contains(c.ID) {
				inCart = "✓"
			}
			b.WriteString(fmt.Sprintf("%s %s %s\n", marker, inCart, a.courseLine(c)))
		}
	}
	b.WriteString("\n")
	if a.search.Focused() {
		b.WriteString(helpLine(a.keys.Submit, a.keys.Back))
	} else {
		b.WriteString(helpLine(a.keys.Search, a.keys.PrevCategory, a.keys.NextCategory, a.keys.Open, a.keys.Add,
			a.keys.ClearSearch, a.keys.Cart, a.keys.Profile, a.keys.Quit))
	}
	return b.String()
}

func (a *App) renderDetail() string {
	var b strings.Builder
	c, ok := a.stores.Catalog.ByID(a.detailID)
	if !ok {
		b.WriteString(errorStyle.Render("This course is no longer in the catalog.") + "\n\n")
		b.WriteString(helpLine(a.keys.Back, a.keys.Quit))
		return b.String()
	}
	b.WriteString(titleStyle.Render(c.Title) + "\n\n")
	rows := []struct{ label, value string }{
		{"Author", c.Instructor},
		{"Category", c.Category},
		{"Rating", fmt.Sprintf("★%.1f  (%d students)", c.Rating, c.Students)},
		{"Tags", strings.Join(c.Tags, ", ")},
		{"Cover", c.Image},
		{"Price", priceStyle.Render(formatPrice(c.Price, a.currency))},
	}
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		b.WriteString(labelStyle.Render(r.label) + r.value + "\n")
	}
	switch {
	case a.stores.Cart.Owns(c.ID):
		b.WriteString("\n" + activeChipStyle.Render("Purchased") + "\n")
	case a.stores.Cart.Contains(c.ID):
		b.WriteString("\n" + activeChipStyle.Render("In your cart") + "\n")
	}
	b.WriteString("\n" + helpLine(a.keys.Add, a.keys.Back, a.keys.Cart, a.keys.Quit))
	return b.String()
}

func (a *App) renderCategories() string {
	cats := a.stores.Catalog.Categories()
	selected := a.stores.Search.Category()
	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		if c == selected {
			parts = append(parts, activeChipStyle.Render("["+c+"]"))
		} else {
			parts = append(parts, chipStyle.Render(" "+c+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (a *App) courseLine(c repository.Course) string {
	title := ansi.Truncate(c.Title, titleWidth, "…")
	pad := titleWidth - ansi.StringWidth(title)
	if pad < 0 {
		pad = 0
	}
	return fmt.Sprintf("%s%s  %-18s ★%.1f  %s",
		title, strings.Repeat(" ", pad),
		ansi.Truncate(c.Instructor, 18, "…"),
		c.Rating,
		priceStyle.Render(formatPrice(c.Price, a.currency)))
}

func (a *App) renderCart() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Cart") + "\n")
	snap := a.stores.Cart.Snapshot()
	if snap.Count == 0 {
		b.WriteString(mutedStyle.Render("Your cart is empty.") + "\n\n")
		b.WriteString(helpLine(a.keys.Catalog, a.keys.Profile, a.keys.Quit))
		return b.String()
	}
	for i, c := range snap.Items {
		marker := " "
		if i == a.cartCursor {
			marker = "▶"
		}
		b.WriteString(fmt.Sprintf("%s %s\n", marker, a.courseLine(c)))
	}
	b.WriteString(fmt.Sprintf("\n%d course(s)  Total: %s\n\n", snap.Count, priceStyle.Render(formatPrice(snap.Total, a.currency))))
	b.WriteString(helpLine(a.keys.Remove, a.keys.ClearCart, a.keys.Checkout, a.keys.Catalog, a.keys.Quit))
	return b.String()
}

func (a *App) renderProfile() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile") + "\n")
	sess, ok := a.stores.Session.Current()
	if !ok {
		b.WriteString("You are not signed in.\n")
	} else {
		b.WriteString(fmt.Sprintf("Name:  %s\nEmail: %s\n", sess.Name, sess.Email))
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d course(s) in cart", a.stores.Cart.Count())) + "\n")
	}
	b.WriteString(mutedStyle.Render("Prices in "+a.currency) + "\n")

	owned := a.stores.Cart.Purchased()
	b.WriteString("\n" + titleStyle.Render(fmt.Sprintf("My Courses (%d)", len(owned))) + "\n")
	if len(owned) == 0 {
		b.WriteString(mutedStyle.Render("Nothing purchased yet.") + "\n")
	}
	for _, c := range owned {
		b.WriteString("  " + a.courseLine(c) + "\n")
	}
	b.WriteString("\n")

	if !ok {
		b.WriteString(helpLine(a.keys.Login, a.keys.Register, a.keys.Currency, a.keys.Catalog, a.keys.Quit))
		return b.String()
	}
	b.WriteString(helpLine(a.keys.Logout, a.keys.Currency, a.keys.Catalog, a.keys.Cart, a.keys.Quit))
	return b.String()
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmClear:
		return modalStyle.Render(titleStyle.Render("Empty cart?") + "\nAll courses will be removed.\n" + helpLine(a.keys.Confirm, a.keys.Cancel))
	case modalConfirmLogout:
		return modalStyle.Render(titleStyle.Render("Log out?") + "\nYou will need to sign in again.\n" + helpLine(a.keys.Confirm, a.keys.Cancel))
	case modalConfirmCheckout:
		return modalStyle.Render(titleStyle.Render("Place order?") +
			fmt.Sprintf("\n%d course(s) for %s\n", a.stores.Cart.Count(), formatPrice(a.stores.Cart.Total(), a.currency)) +
			helpLine(a.keys.Confirm, a.keys.Cancel))
	default:
		return ""
	}
}

// formatPrice renders whole currency units with space-separated thousands, e.g. "12 990 ₽".
func formatPrice(amount int64, symbol string) string {
	digits := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	if symbol == "" {
		return out
	}
	return out + " " + symbol
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
