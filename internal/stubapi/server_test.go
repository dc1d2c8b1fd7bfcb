package stubapi

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genlink-dev/genlink/internal/cli/api"
	"github.com/genlink-dev/genlink/internal/cli/auth"
	"github.com/genlink-dev/genlink/internal/cli/guard"
)

func newTestStub(t *testing.T) (*httptest.Server, *api.Client) {
	t.Helper()

	s, err := New(":memory:", "", zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return ts, api.New(ts.URL, zerolog.Nop())
}

func registerVolunteer(t *testing.T, client *api.Client, email string) {
	t.Helper()

	_, err := client.Register(context.Background(), api.RegisterRequest{
		Email:            email,
		Password:         "haslo1234",
		FullName:         "Anna Kowalska",
		Phone:            "501502503",
		City:             "Warszawa",
		AvailabilityType: 1,
	})
	require.NoError(t, err)
}

func createPendingReport(t *testing.T, client *api.Client, city string) *api.Report {
	t.Helper()

	report, err := client.CreateReport(context.Background(), api.ReportCreateRequest{
		FullName:     "Jan Nowak",
		Phone:        "601602603",
		Address:      "ul. Polna 5",
		City:         city,
		Problem:      "Telefon nie łączy się z Wi-Fi",
		ContactOK:    true,
		ReportTypeID: 1,
	})
	require.NoError(t, err)
	return report
}

func TestRegister_ValidationErrors(t *testing.T) {
	_, client := newTestStub(t)

	_, err := client.Register(context.Background(), api.RegisterRequest{
		Email:            "not-an-email",
		Password:         "short",
		FullName:         "AK",
		Phone:            "123",
		AvailabilityType: 1,
	})

	var verr *api.ValidationError
	require.ErrorAs(t, err, &verr)
	byField := verr.ByField()
	assert.Contains(t, byField, "email")
	assert.Contains(t, byField, "password")
	assert.Contains(t, byField, "full_name")
	assert.Equal(t, "Phone number must be 9 digits", byField["phone"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, client := newTestStub(t)

	registerVolunteer(t, client, "anna@example.com")

	_, err := client.Register(context.Background(), api.RegisterRequest{
		Email:            "anna@example.com",
		Password:         "haslo1234",
		FullName:         "Anna Kowalska",
		AvailabilityType: 1,
	})
	assert.ErrorIs(t, err, api.ErrConflict)
}

func TestLogin_WrongPassword(t *testing.T) {
	_, client := newTestStub(t)

	registerVolunteer(t, client, "anna@example.com")

	_, err := client.Login(context.Background(), "anna@example.com", "zlehaslo99")
	assert.ErrorIs(t, err, api.ErrInvalidCredentials)
}

func TestReportLifecycle(t *testing.T) {
	_, client := newTestStub(t)
	ctx := context.Background()

	registerVolunteer(t, client, "anna@example.com")
	login, err := client.Login(ctx, "anna@example.com", "haslo1234")
	require.NoError(t, err)
	token := login.AccessToken

	first := createPendingReport(t, client, "Warszawa")
	second := createPendingReport(t, client, "Kraków")

	// Only pending reports are listed, newest first
	reports, err := client.ListReports(ctx, token, api.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	filtered, err := client.ListReports(ctx, token, api.ReportFilter{City: "Kraków"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)

	// No active report yet
	_, err = client.MyAcceptedReport(ctx, token)
	assert.ErrorIs(t, err, api.ErrNotFound)

	accepted, err := client.AcceptReport(ctx, token, first.ID)
	require.NoError(t, err)
	assert.Equal(t, api.ReportStatusAccepted, accepted.Status)
	assert.NotEmpty(t, accepted.AcceptedAt)

	me, err := client.Me(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, me.ActiveReport)
	assert.Equal(t, first.ID, *me.ActiveReport)

	// One active report per volunteer
	_, err = client.AcceptReport(ctx, token, second.ID)
	assert.ErrorIs(t, err, api.ErrConflict)

	// Accepted reports leave the pending pool
	reports, err = client.ListReports(ctx, token, api.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, second.ID, reports[0].ID)

	mine, err := client.MyAcceptedReport(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, first.ID, mine.ID)

	completed, err := client.CompleteActiveReport(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, api.ReportStatusCompleted, completed.Status)
	assert.NotEmpty(t, completed.CompletedAt)

	me, err = client.Me(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, me.ActiveReport)
	assert.Equal(t, 1, me.ResolvedCases)
	assert.Equal(t, 1, me.ResolvedCasesThisYear)
	assert.Equal(t, genPointsPerCase, me.GenPoints)

	history, err := client.MyCompletedReports(ctx, token)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.ID, history[0].ID)
}

func TestCancelActiveReport_ReturnsToPending(t *testing.T) {
	_, client := newTestStub(t)
	ctx := context.Background()

	registerVolunteer(t, client, "anna@example.com")
	login, err := client.Login(ctx, "anna@example.com", "haslo1234")
	require.NoError(t, err)
	token := login.AccessToken

	report := createPendingReport(t, client, "Warszawa")
	_, err = client.AcceptReport(ctx, token, report.ID)
	require.NoError(t, err)

	cancelled, err := client.CancelActiveReport(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, api.ReportStatusPending, cancelled.Status)
	assert.Empty(t, cancelled.AcceptedAt)

	// Cancelling twice has nothing left to release
	_, err = client.CancelActiveReport(ctx, token)
	assert.ErrorIs(t, err, api.ErrNotFound)

	// The report is back in the pool for others
	reports, err := client.ListReports(ctx, token, api.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, reports, 1)
}

func TestReportStats(t *testing.T) {
	_, client := newTestStub(t)
	ctx := context.Background()

	createPendingReport(t, client, "Warszawa")
	createPendingReport(t, client, "Warszawa")

	stats, err := client.ReportStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalReports)
	assert.Equal(t, 2, stats.ByType["Smartfon"])
}

func TestTypeListings_Seeded(t *testing.T) {
	_, client := newTestStub(t)
	ctx := context.Background()

	reportTypes, err := client.ReportTypes(ctx)
	require.NoError(t, err)
	require.Len(t, reportTypes, 5)
	assert.Equal(t, "Smartfon", reportTypes[0].Name)

	availTypes, err := client.AvailabilityTypes(ctx)
	require.NoError(t, err)
	require.Len(t, availTypes, 3)
}

func TestAuthRequired(t *testing.T) {
	_, client := newTestStub(t)

	_, err := client.Me(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	_, err = client.Me(context.Background(), "")
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestDeleteAccount_ReleasesActiveReport(t *testing.T) {
	_, client := newTestStub(t)
	ctx := context.Background()

	registerVolunteer(t, client, "anna@example.com")
	login, err := client.Login(ctx, "anna@example.com", "haslo1234")
	require.NoError(t, err)
	token := login.AccessToken

	report := createPendingReport(t, client, "Warszawa")
	_, err = client.AcceptReport(ctx, token, report.ID)
	require.NoError(t, err)

	require.NoError(t, client.DeleteMe(ctx, token))

	_, err = client.Me(ctx, token)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	// Orphaned report must not stay accepted
	registerVolunteer(t, client, "piotr@example.com")
	login, err = client.Login(ctx, "piotr@example.com", "haslo1234")
	require.NoError(t, err)

	got, err := client.GetReport(ctx, login.AccessToken, report.ID)
	require.NoError(t, err)
	assert.Equal(t, api.ReportStatusPending, got.Status)
}

// sessionStore is an in-memory token store for the full-session scenario
type sessionStore struct {
	token string
}

func (s *sessionStore) Token() string                 { return s.token }
func (s *sessionStore) SetToken(token string, _ bool) { s.token = token }
func (s *sessionStore) ClearToken()                   { s.token = "" }

// recordingRouter records guard-initiated redirects
type recordingRouter struct {
	current  string
	replaces []string
}

func (r *recordingRouter) Replace(path string) error {
	r.current = path
	r.replaces = append(r.replaces, path)
	return nil
}

func (r *recordingRouter) Current() string { return r.current }

// TestFullSessionScenario walks one volunteer through the whole flow:
// register, log in, browse reports, accept one, get bounced off the
// reports page while it is active, complete it, and browse again.
func TestFullSessionScenario(t *testing.T) {
	_, client := newTestStub(t)
	ctx := context.Background()

	registerVolunteer(t, client, "anna@example.com")
	report := createPendingReport(t, client, "Warszawa")

	store := &sessionStore{}
	mgr := auth.NewManager(store, client, zerolog.Nop())

	mgr.Bootstrap(ctx, "/wolontariusz/login")
	snap := mgr.Snapshot()
	assert.False(t, snap.IsAuthenticated)

	login, err := client.Login(ctx, "anna@example.com", "haslo1234")
	require.NoError(t, err)
	require.NoError(t, mgr.Login(ctx, login.AccessToken, true))

	router := &recordingRouter{current: "/wolontariusz/zgloszenia"}
	authGuard := guard.NewAuthGuard(router, zerolog.Nop(), "/wolontariusz/login")
	reportGuard := guard.NewNoActiveReportGuard(router, zerolog.Nop(), "/wolontariusz/login", "/wolontariusz/panel")

	snap = mgr.Snapshot()
	assert.Equal(t, guard.DecisionAllow, authGuard.Evaluate(snap))
	assert.Equal(t, guard.DecisionAllow, reportGuard.Evaluate(snap))

	_, err = client.AcceptReport(ctx, snap.Token, report.ID)
	require.NoError(t, err)
	require.NoError(t, mgr.RefreshProfile(ctx))

	// With an active report the browse page redirects to the dashboard
	snap = mgr.Snapshot()
	assert.Equal(t, guard.DecisionRedirected, reportGuard.Evaluate(snap))
	assert.Equal(t, []string{"/wolontariusz/panel"}, router.replaces)

	_, err = client.CompleteActiveReport(ctx, snap.Token)
	require.NoError(t, err)
	require.NoError(t, mgr.RefreshProfile(ctx))

	snap = mgr.Snapshot()
	require.NotNil(t, snap.User)
	assert.Nil(t, snap.User.ActiveReport)
	assert.Equal(t, 1, snap.User.ResolvedCases)
	assert.Equal(t, guard.DecisionAllow, reportGuard.Evaluate(snap))

	mgr.Logout()
	snap = mgr.Snapshot()
	assert.Equal(t, guard.DecisionRedirected, authGuard.Evaluate(snap))
	assert.Equal(t, "/wolontariusz/login", router.Current())
}
