package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	"github.com/rafabene/avantpro-members/internal/domain/events"
	"github.com/rafabene/avantpro-members/internal/forms"
	"github.com/rafabene/avantpro-members/internal/handlers/dto"
	"github.com/rafabene/avantpro-members/internal/handlers/middleware"
	"github.com/rafabene/avantpro-members/internal/infrastructure/config"
	"github.com/rafabene/avantpro-members/internal/infrastructure/i18n"
	"github.com/rafabene/avantpro-members/internal/infrastructure/logging"
	"github.com/rafabene/avantpro-members/internal/infrastructure/metrics"
	"github.com/rafabene/avantpro-members/internal/infrastructure/persistence/postgres"
	"github.com/rafabene/avantpro-members/internal/infrastructure/security"
	"github.com/rafabene/avantpro-members/internal/infrastructure/session"
	"github.com/rafabene/avantpro-members/internal/services"
	"github.com/rafabene/avantpro-members/internal/views"
)

const adminPath = "/admin/members"

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	admin    *services.AdminService
	records  *services.RecordsService
	hub      *EventHub
	sessions *session.MemoryStore
	token    string
}

func newTestServer(migrate bool) *testServer {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), postgres.NewGormConfig(logger.Silent))
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)
	DeferCleanup(sqlDB.Close)
	if migrate {
		Expect(postgres.Migrate(db)).To(Succeed())
	}

	log := logging.NewSlogLoggerTo(io.Discard, "error")
	i18nService, err := i18n.NewService("", "en")
	Expect(err).NotTo(HaveOccurred())

	cfg := config.MembersConfig{
		AdminPath:     adminPath,
		AdminRoles:    []string{"root", "admin"},
		Roles:         entities.ParseRoles("participant:Participant,author:Author"),
		DashboardURL:  "/dashboard",
		DBCheckURL:    "/dbcheck",
		SessionCookie: "members_session",
		Templates: config.TemplatesConfig{
			Login:     "authentication/login.html",
			Logout:    "authentication/logout.html",
			Associate: "authentication/associate.html",
			Edit:      "profile/edit.html",
			Register:  "profile/register.html",
		},
		Actions: config.FormActions{
			Login:     "/authentication/login",
			Logout:    "/authentication/logout",
			Associate: "/authentication/associate",
			Edit:      "/membership/profile/edit",
			Register:  "/membership/profile/register",
		},
	}

	dispatcher := events.NewDispatcher()
	accounts := postgres.NewAccountRepository(db, dispatcher)
	oauths := postgres.NewOauthRepository(db)
	providers := postgres.NewProviderRepository(db)
	metas := postgres.NewAccountMetaRepository(db)
	services.RegisterCascade(dispatcher, oauths, providers, metas)

	hub := NewEventHub(log)
	dispatcher.Observe(events.Wildcard, hub.Observe)

	roles := services.NewRolesService(cfg.Roles)
	records := services.NewRecordsService(accounts, oauths, providers, metas, log)
	admin := services.NewAdminService(accounts, oauths, providers, roles, postgres.NewUnitOfWork(db), dispatcher, security.NewBcryptHasher(4), log)

	formsManager := forms.NewManager(cfg.Actions, i18nService)
	renderer, err := views.NewRenderer()
	Expect(err).NotTo(HaveOccurred())
	functions := views.NewFunctions(records, formsManager, renderer, cfg.Templates, i18nService, log)

	verifier := security.NewTokenVerifier("test-secret")
	token, err := verifier.Issue("admin-1", "Admin", []string{"admin"}, time.Hour)
	Expect(err).NotTo(HaveOccurred())

	sessions := session.NewMemoryStore()

	router := gin.New()
	router.Use(middleware.NewI18nMiddleware(i18nService).DetectLanguage())
	router.Use(middleware.MemberSession(sessions, cfg.SessionCookie, log))

	backend := NewBackendHandler(admin, records, roles, formsManager, renderer, functions, session.NewMemoryFlashBag(), metrics.New(), cfg, log)
	gate := middleware.NewAdminAuth(verifier, cfg.AdminRoles, "admin_token", cfg.DashboardURL, log)
	backend.RegisterRoutes(router.Group(adminPath, gate.RequireAdmin()), hub)

	frontend := NewFrontendHandler(renderer, functions, roles, log)
	router.GET("/members", frontend.Members)

	return &testServer{
		router:   router,
		db:       db,
		admin:    admin,
		records:  records,
		hub:      hub,
		sessions: sessions,
		token:    token,
	}
}

func (s *testServer) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
}

func (s *testServer) createAccount(email string) *entities.Account {
	account, err := s.admin.CreateAccount(context.Background(), services.ProfileInput{Displayname: "Jane", Email: email})
	Expect(err).NotTo(HaveOccurred())
	return account
}

func decodeJob(w *httptest.ResponseRecorder) dto.JobResult {
	var result dto.JobResult
	Expect(json.Unmarshal(w.Body.Bytes(), &result)).To(Succeed())
	return result
}

var _ = Describe("BackendHandler", func() {
	var server *testServer

	BeforeEach(func() {
		server = newTestServer(true)
	})

	Describe("controle de acesso", func() {
		It("redireciona para o dashboard sem token", func() {
			w := httptest.NewRecorder()
			server.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, adminPath, nil))

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/dashboard"))
		})
	})

	Describe("listagem", func() {
		It("mostra as contas cadastradas", func() {
			account := server.createAccount("jane@x.com")

			w := server.do(http.MethodGet, adminPath, nil, "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("jane@x.com"))
			Expect(w.Body.String()).To(ContainSubstring(account.Guid))
		})

		It("mostra aviso quando as tabelas não existem", func() {
			server = newTestServer(false)

			w := server.do(http.MethodGet, adminPath, nil, "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("/dbcheck"))
			Expect(w.Body.String()).NotTo(ContainSubstring(`<option value="participant"`))
			Expect(w.Body.String()).NotTo(ContainSubstring(`<option value="author"`))
		})

		It("filtra pelo role e pelo status", func() {
			author := server.createAccount("author@x.com")
			Expect(server.admin.AddAccountRole(context.Background(), author.Guid, "author")).To(Succeed())
			disabled := server.createAccount("off@x.com")
			Expect(server.admin.AddAccountRole(context.Background(), disabled.Guid, "author")).To(Succeed())
			Expect(server.admin.DisableAccount(context.Background(), disabled.Guid)).To(Succeed())
			server.createAccount("jane@x.com")

			w := server.do(http.MethodGet, adminPath+"?role=author", nil, "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("author@x.com"))
			Expect(w.Body.String()).To(ContainSubstring("off@x.com"))
			Expect(w.Body.String()).NotTo(ContainSubstring("jane@x.com"))
			Expect(w.Body.String()).To(ContainSubstring(`<option value="author" selected>`))

			w = server.do(http.MethodGet, adminPath+"?role=author&status=enabled", nil, "")
			Expect(w.Body.String()).To(ContainSubstring("author@x.com"))
			Expect(w.Body.String()).NotTo(ContainSubstring("off@x.com"))
		})

		It("ignora role fora da configuração", func() {
			server.createAccount("jane@x.com")

			w := server.do(http.MethodGet, adminPath+"?role=a%25", nil, "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("jane@x.com"))
		})
	})

	Describe("novo membro", func() {
		It("cria a conta e redireciona para a listagem", func() {
			w := server.postForm(adminPath+"/add", url.Values{
				"displayname": {"Jane"},
				"email":       {"jane@x.com"},
			})

			Expect(w.Code).To(Equal(http.StatusFound))
			Expect(w.Header().Get("Location")).To(Equal(adminPath))

			account, err := server.records.GetAccountByEmail(context.Background(), "jane@x.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(account).NotTo(BeNil())
			Expect(account.Enabled).To(BeTrue())
			Expect(account.Roles).To(BeEmpty())

			By("mostrando a mensagem na próxima página")
			list := server.do(http.MethodGet, adminPath, nil, "")
			Expect(list.Body.String()).To(ContainSubstring("jane@x.com"))
		})

		It("exibe o formulário de novo com os erros", func() {
			w := server.postForm(adminPath+"/add", url.Values{
				"displayname": {"J"},
				"email":       {"not-an-email"},
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`name="email"`))

			accounts, err := server.records.GetAccounts(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts).To(BeEmpty())
		})

		It("recusa email duplicado", func() {
			server.createAccount("jane@x.com")

			w := server.postForm(adminPath+"/add", url.Values{
				"displayname": {"Other"},
				"email":       {"jane@x.com"},
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			accounts, err := server.records.GetAccounts(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts).To(HaveLen(1))
		})
	})

	Describe("edição", func() {
		It("redireciona com GUID inválido", func() {
			w := server.do(http.MethodGet, adminPath+"/edit/bad-guid", nil, "")

			Expect(w.Code).To(Equal(http.StatusFound))
			Expect(w.Header().Get("Location")).To(Equal(adminPath))

			list := server.do(http.MethodGet, adminPath, nil, "")
			Expect(list.Body.String()).To(ContainSubstring("bad-guid"))
		})

		It("altera o perfil", func() {
			account := server.createAccount("jane@x.com")

			form := server.do(http.MethodGet, adminPath+"/edit/"+account.Guid, nil, "")
			Expect(form.Code).To(Equal(http.StatusOK))
			Expect(form.Body.String()).To(ContainSubstring(`value="jane@x.com"`))

			w := server.postForm(adminPath+"/edit/"+account.Guid, url.Values{
				"displayname": {"Jane Doe"},
				"email":       {"doe@x.com"},
			})
			Expect(w.Code).To(Equal(http.StatusFound))

			stored, err := server.records.GetAccountByGuid(context.Background(), account.Guid)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Displayname).To(Equal("Jane Doe"))
			Expect(stored.Email.String()).To(Equal("doe@x.com"))
		})
	})

	Describe("ações em lote", func() {
		It("desabilita os membros informados", func() {
			first := server.createAccount("a@x.com")
			second := server.createAccount("b@x.com")

			w := server.postForm(adminPath+"/action/"+dto.JobUserDisable, url.Values{
				"members[]": {first.Guid, second.Guid},
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decodeJob(w)).To(Equal(dto.JobResult{Job: dto.JobUserDisable, Result: true, Data: ""}))

			disabled, err := server.records.GetAccountsByEnableStatus(context.Background(), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(disabled).To(HaveLen(2))
		})

		It("aceita JSON", func() {
			account := server.createAccount("a@x.com")
			body := `{"members":["` + account.Guid + `"],"role":"participant"}`

			w := server.do(http.MethodPost, adminPath+"/action/"+dto.JobRoleAdd, strings.NewReader(body), "application/json")

			Expect(w.Code).To(Equal(http.StatusOK))
			stored, err := server.records.GetAccountByGuid(context.Background(), account.Guid)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Roles).To(ConsistOf("participant"))
		})

		It("falha com GUID inválido", func() {
			w := server.postForm(adminPath+"/action/"+dto.JobUserDelete, url.Values{
				"members[]": {"bad-guid"},
			})

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			result := decodeJob(w)
			Expect(result.Job).To(Equal(dto.JobUserDelete))
			Expect(result.Result).To(BeFalse())
			Expect(result.Data).NotTo(BeEmpty())
		})

		It("falha sem role em roleAdd", func() {
			account := server.createAccount("a@x.com")

			w := server.postForm(adminPath+"/action/"+dto.JobRoleAdd, url.Values{
				"members[]": {account.Guid},
			})

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decodeJob(w).Result).To(BeFalse())
		})

		It("falha com role desconhecido", func() {
			account := server.createAccount("a@x.com")

			w := server.postForm(adminPath+"/action/"+dto.JobRoleAdd, url.Values{
				"members[]": {account.Guid},
				"role":      {"ghost"},
			})

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			stored, err := server.records.GetAccountByGuid(context.Background(), account.Guid)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Roles).To(BeEmpty())
		})

		It("desfaz o lote inteiro quando um membro falha", func() {
			account := server.createAccount("a@x.com")

			w := server.postForm(adminPath+"/action/"+dto.JobUserDelete, url.Values{
				"members[]": {account.Guid, "bad-guid"},
			})

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			stored, err := server.records.GetAccountByGuid(context.Background(), account.Guid)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).NotTo(BeNil())
		})

		It("falha sem membros", func() {
			w := server.postForm(adminPath+"/action/"+dto.JobUserEnable, url.Values{})

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decodeJob(w).Result).To(BeFalse())
		})

		It("responde problem details para JSON malformado", func() {
			w := server.do(http.MethodPost, adminPath+"/action/"+dto.JobUserEnable, strings.NewReader("{"), "application/json")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/problem+json"))

			var problem map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &problem)).To(Succeed())
			Expect(problem).To(HaveKeyWithValue("status", BeNumerically("==", http.StatusBadRequest)))
			Expect(problem["errors"]).To(HaveLen(1))
		})

		It("responde problem details para job desconhecido", func() {
			w := server.postForm(adminPath+"/action/explode", url.Values{"members[]": {"x"}})

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/problem+json"))
		})
	})

	Describe("eventos", func() {
		It("recusa requisição sem upgrade", func() {
			w := server.do(http.MethodGet, adminPath+"/events", nil, "")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("envia os eventos de conta pelo websocket", func() {
			ts := httptest.NewServer(server.router)
			DeferCleanup(ts.Close)

			header := http.Header{}
			header.Set("Authorization", "Bearer "+server.token)
			conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+adminPath+"/events", header)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(conn.Close)

			Eventually(server.hub.ClientCount).Should(Equal(1))

			server.createAccount("jane@x.com")

			Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
			var message dto.EventMessage
			Expect(conn.ReadJSON(&message)).To(Succeed())
			Expect(message.Event).To(Equal(events.AccountCreated))
			Expect(message.Account.Email).To(Equal("jane@x.com"))
		})
	})
})

var _ = Describe("FrontendHandler", func() {
	var server *testServer

	BeforeEach(func() {
		server = newTestServer(true)
	})

	It("mostra o login para visitantes", func() {
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/members", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("members-login"))
	})

	It("mostra o perfil do membro da sessão", func() {
		account := server.createAccount("jane@x.com")
		Expect(server.sessions.Save(context.Background(), "sid-1", &session.Authorisation{
			Guid:  account.Guid,
			Roles: []string{"participant"},
		})).To(Succeed())

		req := httptest.NewRequest(http.MethodGet, "/members", nil)
		req.AddCookie(&http.Cookie{Name: "members_session", Value: "sid-1"})
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`data-guid="` + account.Guid + `"`))
		Expect(w.Body.String()).To(ContainSubstring("members-logout"))
	})
})
