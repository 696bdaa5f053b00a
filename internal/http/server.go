package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"caixa/internal/auth"
	"caixa/internal/cache"
	"caixa/internal/core"
	applog "caixa/internal/log"
	"caixa/internal/services"
)

// Server is the JSON API front end. Authentication is a bearer session
// token; every handler below /api (except login, register, and
// invitation acceptance) resolves the token to a session first.
type Server struct {
	http.Server

	sessions     *auth.SessionManager
	identity     *services.IdentityService
	finance      *services.FinanceService
	activity     *services.ActivityService
	integrations *services.IntegrationService
	dashboard    *services.DashboardService
	logger       *applog.Logger

	rateLimiter *rateLimiter

	// summaryCache memoizes dashboard summaries per session and month.
	summaryCache *cache.LRUCache[core.MonthSummary]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Deps bundles everything the server needs.
type Deps struct {
	Sessions     *auth.SessionManager
	Identity     *services.IdentityService
	Finance      *services.FinanceService
	Activity     *services.ActivityService
	Integrations *services.IntegrationService
	Dashboard    *services.DashboardService
	Logger       *applog.Logger
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		sessions:         deps.Sessions,
		identity:         deps.Identity,
		finance:          deps.Finance,
		activity:         deps.Activity,
		integrations:     deps.Integrations,
		dashboard:        deps.Dashboard,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		rateLimiter:      newRateLimiter(),
		summaryCache:     cache.NewLRUCache[core.MonthSummary](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	// Outermost middlewares put a request-scoped logger in the context;
	// wrap and the handlers pull it back out with applog.FromContext.
	s.Server.Handler = applog.Middleware(s.logger)(applog.RequestIDMiddleware(requestIDFrom)(mux))

	mux.HandleFunc("GET /healthz", handleHealth)

	// Public endpoints
	mux.HandleFunc("POST /api/login", s.wrap(s.handleLogin))
	mux.HandleFunc("POST /api/register", s.wrap(s.handleRegister))
	mux.HandleFunc("POST /api/invitations/{id}/accept", s.wrap(s.handleAcceptInvitation))

	// Session endpoints
	mux.HandleFunc("POST /api/logout", s.auth(s.handleLogout))

	mux.HandleFunc("GET /api/transactions", s.auth(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.auth(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.auth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.auth(s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/transactions/{id}/toggle", s.auth(s.handleToggleTransaction))

	mux.HandleFunc("GET /api/incomes", s.auth(s.handleListIncomes))
	mux.HandleFunc("POST /api/incomes", s.auth(s.handleCreateIncome))
	mux.HandleFunc("PUT /api/incomes/{id}", s.auth(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /api/incomes/{id}", s.auth(s.handleDeleteIncome))

	mux.HandleFunc("GET /api/categories", s.auth(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.auth(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.auth(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.auth(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/accounts", s.auth(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.auth(s.handleCreateAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", s.auth(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.auth(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/users", s.auth(s.handleListUsers))
	mux.HandleFunc("PUT /api/users/{id}/status", s.auth(s.handleUpdateUserStatus))
	mux.HandleFunc("POST /api/users/{id}/reset-password", s.auth(s.handleResetUserPassword))
	mux.HandleFunc("POST /api/users/reset-link", s.auth(s.handleSendResetLink))

	mux.HandleFunc("GET /api/companies", s.auth(s.handleListCompanies))

	mux.HandleFunc("GET /api/invitations", s.auth(s.handleListInvitations))
	mux.HandleFunc("POST /api/invitations", s.auth(s.handleSendInvitation))
	mux.HandleFunc("DELETE /api/invitations/{id}", s.auth(s.handleDeleteInvitation))

	mux.HandleFunc("GET /api/integrations", s.auth(s.handleListIntegrations))
	mux.HandleFunc("POST /api/integrations", s.auth(s.handleConnectIntegration))
	mux.HandleFunc("DELETE /api/integrations/{id}", s.auth(s.handleDisconnectIntegration))
	mux.HandleFunc("POST /api/integrations/{id}/sync", s.auth(s.handleSyncIntegration))

	mux.HandleFunc("GET /api/activity", s.auth(s.handleListActivity))
	mux.HandleFunc("GET /api/activity/export", s.auth(s.handleExportActivity))

	mux.HandleFunc("GET /api/dashboard", s.auth(s.handleDashboard))
	mux.HandleFunc("GET /api/master/dashboard", s.auth(s.handleMasterOverview))
	mux.HandleFunc("GET /api/dashboard/widgets", s.auth(s.handleListWidgets))
	mux.HandleFunc("POST /api/dashboard/widgets/{id}/toggle", s.auth(s.handleToggleWidget))
	mux.HandleFunc("PUT /api/dashboard/widgets/order", s.auth(s.handleReorderWidgets))
	mux.HandleFunc("PUT /api/dashboard/date", s.auth(s.handleSetCurrentDate))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				s.logger.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
