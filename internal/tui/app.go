package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/edushop/internal/cart"
	"github.com/jask/edushop/internal/catalog"
	"github.com/jask/edushop/internal/config"
	"github.com/jask/edushop/internal/database/repository"
	"github.com/jask/edushop/internal/session"
)

// App is the terminal storefront. It reads store state on every render and
// calls store operations from key handlers; it holds no business state of
// its own beyond cursors and form text.
type App struct {
	ctx    context.Context
	cfg    config.Config
	stores Stores
	keys   keyMap

	state    appState
	modal    modalState
	status   string
	loadErr  error
	width    int
	currency string

	search      textinput.Model
	spinner     spinner.Model
	catCursor   int
	cartCursor  int
	categoryIdx int
	detailID    string

	login    *authForm
	register *authForm
}

// Stores are the state containers the UI composes.
type Stores struct {
	Catalog *catalog.Store
	Search  *catalog.Search
	Cart    *cart.Store
	Session *session.Store
}

type appState string

const (
	viewCatalog  appState = "catalog"
	viewDetail   appState = "detail"
	viewCart     appState = "cart"
	viewProfile  appState = "profile"
	viewLogin    appState = "login"
	viewRegister appState = "register"
)

type modalState string

const (
	modalNone            modalState = ""
	modalConfirmClear    modalState = "confirmClear"
	modalConfirmCheckout modalState = "confirmCheckout"
	modalConfirmLogout   modalState = "confirmLogout"
)

// currencies is the cycle offered on the profile screen.
var currencies = []string{"₽", "$", "€"}

func nextCurrency(cur string) string {
	for i, c := range currencies {
		if c == cur {
			return currencies[(i+1)%len(currencies)]
		}
	}
	return currencies[0]
}

func New(ctx context.Context, cfg config.Config, stores Stores) *App {
	in := textinput.New()
	in.Placeholder = "search courses, instructors, tags"
	in.Prompt = "/ "
	in.CharLimit = 64
	in.Width = 40
	in.Cursor.SetMode(cursor.CursorStatic)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		ctx:      ctx,
		cfg:      cfg,
		stores:   stores,
		keys:     newKeyMap(),
		state:    viewCatalog,
		currency: cfg.UI.CurrencySymbol,
		search:   in,
		spinner:  sp,
		login:    newLoginForm(),
		register: newRegisterForm(),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCatalog(), a.spinner.Tick)
}

// messages
type catalogLoadedMsg struct{ err error }

type searchTickMsg struct{ token catalog.Token }

type authDoneMsg struct {
	sess session.Session
	err  error
}

type logoutDoneMsg struct{ err error }

type configSavedMsg struct{ err error }

// commands
func (a *App) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{err: a.stores.Catalog.Load(a.ctx)}
	}
}

func (a *App) scheduleSearch(query string) tea.Cmd {
	token := a.stores.Search.Schedule(query)
	return tea.Tick(a.stores.Search.Delay(), func(_ time.Time) tea.Msg {
		return searchTickMsg{token: token}
	})
}

func (a *App) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := a.stores.Session.Login(a.ctx, email, password)
		return authDoneMsg{sess: sess, err: err}
	}
}

func (a *App) registerCmd(name, email, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := a.stores.Session.Register(a.ctx, name, email, password)
		return authDoneMsg{sess: sess, err: err}
	}
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: a.stores.Session.Logout(a.ctx)}
	}
}

func (a *App) saveConfigCmd() tea.Cmd {
	cfg := a.cfg
	return func() tea.Msg {
		return configSavedMsg{err: config.Save(cfg)}
	}
}

// busy is true while anything the user waits on is pending, including the
// gap between startup and the first catalog load.
func (a *App) busy() bool {
	waitingForCatalog := !a.stores.Catalog.Loaded() && a.loadErr == nil
	return waitingForCatalog || a.stores.Catalog.Loading() ||
		a.stores.Session.IsLoading() || a.stores.Search.Searching()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		switch a.state {
		case viewLogin, viewRegister:
			return a.handleFormKey(m)
		}
		if a.search.Focused() {
			return a.handleSearchKey(m)
		}
		switch {
		case key.Matches(m, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(m, a.keys.Catalog):
			a.state = viewCatalog
			a.status = ""
			return a, nil
		case key.Matches(m, a.keys.Cart):
			a.state = viewCart
			a.status = ""
			a.clampCartCursor()
			return a, nil
		case key.Matches(m, a.keys.Profile):
			a.state = viewProfile
			a.status = ""
			return a, nil
		}
		switch a.state {
		case viewDetail:
			return a.handleDetailKey(m)
		case viewCart:
			return a.handleCartKey(m)
		case viewProfile:
			return a.handleProfileKey(m)
		default:
			return a.handleCatalogKey(m)
		}
	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd
	case catalogLoadedMsg:
		if m.err != nil {
			a.loadErr = m.err
			log.Printf("catalog load: %v", m.err)
			return a, nil
		}
		a.loadErr = nil
		a.stores.Search.Refresh()
	case searchTickMsg:
		a.stores.Search.Commit(m.token)
		a.clampCatalogCursor()
	case authDoneMsg:
		return a.handleAuthDone(m)
	case logoutDoneMsg:
		a.state = viewProfile
		if m.err != nil {
			log.Printf("logout: %v", m.err)
			a.status = "signed out, but saved data could not be removed"
			return a, nil
		}
		a.status = "signed out"
	case configSavedMsg:
		if m.err != nil {
			log.Printf("save config: %v", m.err)
			a.status = "prices in " + a.currency + " (not saved)"
			return a, nil
		}
		a.status = "prices in " + a.currency
	}
	return a, nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEnter, tea.KeyEsc:
		a.search.Blur()
		return a, nil
	}
	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	after := a.search.Value()
	if after == before {
		return a, cmd
	}
	a.catCursor = 0
	if isBlank(after) {
		a.stores.Search.SetQuery(after)
		return a, cmd
	}
	return a, tea.Batch(cmd, a.scheduleSearch(after), a.spinner.Tick)
}

func (a *App) handleCatalogKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := a.stores.Search.Results()
	a.clampCatalogCursor()
	switch {
	case key.Matches(m, a.keys.Search):
		a.search.Focus()
	case key.Matches(m, a.keys.ClearSearch):
		a.search.Reset()
		a.categoryIdx = 0
		a.catCursor = 0
		a.stores.Search.Clear()
	case key.Matches(m, a.keys.Up):
		if a.catCursor > 0 {
			a.catCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.catCursor < len(results)-1 {
			a.catCursor++
		}
	case key.Matches(m, a.keys.PrevCategory):
		a.cycleCategory(-1)
	case key.Matches(m, a.keys.NextCategory):
		a.cycleCategory(1)
	case key.Matches(m, a.keys.Suggestion):
		if s := a.suggestion(); s != "" {
			a.search.SetValue(s)
			a.stores.Search.Commit(a.stores.Search.Schedule(s))
			a.catCursor = 0
		}
	case key.Matches(m, a.keys.Open):
		if len(results) == 0 {
			return a, nil
		}
		a.detailID = results[a.catCursor].ID
		a.state = viewDetail
		a.status = ""
	case key.Matches(m, a.keys.Add):
		if len(results) == 0 {
			return a, nil
		}
		a.addToCart(results[a.catCursor])
	}
	return a, nil
}

func (a *App) handleDetailKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Back):
		a.state = viewCatalog
		a.status = ""
	case key.Matches(m, a.keys.Add):
		if c, ok := a.stores.Catalog.ByID(a.detailID); ok {
			a.addToCart(c)
		}
	}
	return a, nil
}

func (a *App) addToCart(c repository.Course) {
	a.stores.Cart.Add(c)
	a.status = fmt.Sprintf("added %q to cart", c.Title)
}

func (a *App) cycleCategory(delta int) {
	cats := a.stores.Catalog.Categories()
	if len(cats) == 0 {
		return
	}
	a.categoryIdx = (a.categoryIdx + delta + len(cats)) % len(cats)
	a.stores.Search.SetCategory(cats[a.categoryIdx])
	a.catCursor = 0
}

// suggestion is the "did you mean" word for an empty result, if any.
func (a *App) suggestion() string {
	v := a.stores.Search.Current()
	if v.Searching || len(v.Courses) > 0 || isBlank(v.Query) {
		return ""
	}
	return a.stores.Catalog.Suggest(v.Query, a.cfg.Search.SuggestDistance)
}

func (a *App) handleCartKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.stores.Cart.Items()
	a.clampCartCursor()
	switch {
	case key.Matches(m, a.keys.Up):
		if a.cartCursor > 0 {
			a.cartCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.cartCursor < len(items)-1 {
			a.cartCursor++
		}
	case key.Matches(m, a.keys.Remove):
		if len(items) == 0 {
			return a, nil
		}
		c := items[a.cartCursor]
		n := a.stores.Cart.Remove(c.ID)
		a.status = fmt.Sprintf("removed %q (%d)", c.Title, n)
		a.clampCartCursor()
	case key.Matches(m, a.keys.ClearCart):
		if len(items) > 0 {
			a.modal = modalConfirmClear
		}
	case key.Matches(m, a.keys.Checkout):
		if len(items) == 0 {
			a.status = "your cart is empty"
			return a, nil
		}
		a.modal = modalConfirmCheckout
	}
	return a, nil
}

func (a *App) handleProfileKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(m, a.keys.Currency) {
		a.currency = nextCurrency(a.currency)
		a.cfg.UI.CurrencySymbol = a.currency
		return a, a.saveConfigCmd()
	}
	if _, ok := a.stores.Session.Current(); ok {
		if key.Matches(m, a.keys.Logout) {
			a.modal = modalConfirmLogout
		}
		return a, nil
	}
	switch {
	case key.Matches(m, a.keys.Login):
		a.login.reset()
		a.state = viewLogin
		a.status = ""
	case key.Matches(m, a.keys.Register):
		a.register.reset()
		a.state = viewRegister
		a.status = ""
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(m, a.keys.Confirm):
		switch a.modal {
		case modalConfirmLogout:
			cmd = a.logoutCmd()
		case modalConfirmClear:
			a.stores.Cart.Clear()
			a.status = "cart emptied"
		case modalConfirmCheckout:
			r, err := a.stores.Cart.Checkout()
			if errors.Is(err, cart.ErrEmptyCart) {
				a.status = "your cart is empty"
			} else {
				a.status = fmt.Sprintf("order placed: %d course(s), %s", r.Count, formatPrice(r.Total, a.currency))
			}
		}
		a.modal = modalNone
		a.cartCursor = 0
	case key.Matches(m, a.keys.Cancel):
		a.modal = modalNone
	}
	return a, cmd
}

func (a *App) activeForm() *authForm {
	if a.state == viewRegister {
		return a.register
	}
	return a.login
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.activeForm()
	switch {
	case key.Matches(m, a.keys.Back):
		if a.stores.Session.IsLoading() {
			return a, nil
		}
		a.state = viewProfile
		a.status = ""
		return a, nil
	case key.Matches(m, a.keys.Submit):
		return a.submitForm(f)
	case key.Matches(m, a.keys.NextField):
		f.move(1)
		return a, nil
	case key.Matches(m, a.keys.PrevField):
		f.move(-1)
		return a, nil
	}
	return a, f.update(m)
}

// submitForm validates locally and starts the auth call. Invalid input never
// reaches the session store.
func (a *App) submitForm(f *authForm) (tea.Model, tea.Cmd) {
	if a.stores.Session.IsLoading() {
		return a, nil
	}
	a.status = ""
	email := f.value(session.FieldEmail)
	password := f.value(session.FieldPassword)

	if a.state == viewRegister {
		name := f.value(session.FieldName)
		r := session.Registration{Name: name, Email: email, Password: password}
		if f.setError(session.ValidateRegistrationForm(r, f.value(session.FieldConfirmPassword))) {
			return a, nil
		}
		return a, tea.Batch(a.registerCmd(name, email, password), a.spinner.Tick)
	}

	if f.setError(session.ValidateLogin(session.Credentials{Email: email, Password: password})) {
		return a, nil
	}
	return a, tea.Batch(a.loginCmd(email, password), a.spinner.Tick)
}

func (a *App) handleAuthDone(m authDoneMsg) (tea.Model, tea.Cmd) {
	if m.err == nil {
		a.state = viewProfile
		a.status = "welcome, " + m.sess.Name
		a.login.reset()
		a.register.reset()
		return a, nil
	}

	var authErr *session.AuthError
	switch {
	case a.activeForm().setError(m.err):
	case errors.As(m.err, &authErr):
		a.status = authErr.Reason
	case errors.Is(m.err, session.ErrInFlight):
		a.status = "already signing in, please wait"
	default:
		a.status = "error: " + m.err.Error()
	}
	return a, nil
}

func (a *App) clampCatalogCursor() {
	if n := len(a.stores.Search.Results()); a.catCursor >= n {
		a.catCursor = max(n-1, 0)
	}
}

func (a *App) clampCartCursor() {
	if n := a.stores.Cart.Count(); a.cartCursor >= n {
		a.cartCursor = max(n-1, 0)
	}
}
