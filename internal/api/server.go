package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mafiawar/internal/auth"
	"mafiawar/internal/config"
	"mafiawar/internal/content"
	"mafiawar/internal/economy"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	auth    *auth.Verifier
	content *content.Catalog
	ledger  *economy.Ledger
	jail    *economy.Jail
	crimes  *economy.Crimes
	assets  *economy.Assets
	prices  *economy.PriceCache
	mux     *chi.Mux
}

type Services struct {
	Content *content.Catalog
	Ledger  *economy.Ledger
	Jail    *economy.Jail
	Crimes  *economy.Crimes
	Assets  *economy.Assets
	Prices  *economy.PriceCache
}

func New(cfg config.APIConfig, logger *slog.Logger, verifier *auth.Verifier, svc Services) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		log:     logger,
		auth:    verifier,
		content: svc.Content,
		ledger:  svc.Ledger,
		jail:    svc.Jail,
		crimes:  svc.Crimes,
		assets:  svc.Assets,
		prices:  svc.Prices,
		mux:     chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/coins", s.handleCoins)
		r.Get("/crimes", s.handleCrimesList)
		r.Get("/assets/templates", s.handleAssetTemplates)

		r.Post("/players", s.handleEnsurePlayer)
		r.Route("/players/{id}", func(r chi.Router) {
			r.Get("/", s.handleProfile)
			r.Get("/balances", s.handleBalances)
			r.Get("/transactions", s.handleTransactions)

			r.Post("/credit", s.handleCredit)
			r.Post("/bank/transfer", s.handleBankTransfer)
			r.Post("/bank/upgrade", s.handleBankUpgrade)
			r.Post("/crypto/buy", s.handleCryptoBuy)
			r.Post("/crypto/sell", s.handleCryptoSell)

			r.Post("/crimes/{crime_id}", s.handleCrime)

			r.Get("/jail", s.handleJailStatus)
			r.Post("/jail/sentence", s.handleSentence)
			r.Post("/jail/bribe", s.handleBribe)
			r.Get("/jail/blocking", s.handleActionBlocking)

			r.Get("/assets", s.handleAssetList)
			r.Post("/assets/purchase", s.handleAssetPurchase)
			r.Post("/assets/collect", s.handleAssetCollect)
			r.Post("/assets/{asset_id}/upgrade", s.handleAssetUpgrade)
		})
	})
}

// authMiddleware expects the shared service token from the bot frontend.
// Player identity rides in the path, not the credential.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if err := s.auth.Verify(token); err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleEnsurePlayer(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := s.ledger.EnsurePlayer(r.Context(), in.UserID, in.Username); err != nil {
		writeDomainError(w, err)
		return
	}
	out, err := s.ledger.Profile(r.Context(), in.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	out, err := s.ledger.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	out, err := s.ledger.Balances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := s.ledger.Transactions(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

// handleCredit grants money on behalf of another game system (quest
// rewards, admin actions). Service-token callers only, like everything
// under /v1.
func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount int64  `json:"amount"`
		Pool   string `json:"pool"`
		Kind   string `json:"kind"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.ledger.CreditDirect(r.Context(), economy.CreditInput{
		UserID:         chi.URLParam(r, "id"),
		Amount:         in.Amount,
		Pool:           in.Pool,
		Kind:           in.Kind,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBankTransfer(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount int64  `json:"amount"`
		From   string `json:"from"`
		To     string `json:"to"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.ledger.Transfer(r.Context(), economy.TransferInput{
		UserID:         chi.URLParam(r, "id"),
		Amount:         in.Amount,
		From:           in.From,
		To:             in.To,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBankUpgrade(w http.ResponseWriter, r *http.Request) {
	out, err := s.ledger.UpgradeBankTier(r.Context(), economy.TierUpgradeInput{
		UserID:         chi.URLParam(r, "id"),
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCryptoBuy(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CoinID string `json:"coin_id"`
		Amount int64  `json:"amount"`
		Pool   string `json:"pool"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.ledger.BuyCrypto(r.Context(), economy.CryptoTradeInput{
		UserID:         chi.URLParam(r, "id"),
		CoinID:         in.CoinID,
		Amount:         in.Amount,
		Pool:           in.Pool,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCryptoSell(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CoinID     string  `json:"coin_id"`
		CoinAmount float64 `json:"coin_amount"`
		Pool       string  `json:"pool"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.ledger.SellCrypto(r.Context(), economy.CryptoTradeInput{
		UserID:         chi.URLParam(r, "id"),
		CoinID:         in.CoinID,
		CoinAmount:     in.CoinAmount,
		Pool:           in.Pool,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	out, err := s.prices.All(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"coins": out})
}

func (s *Server) handleCrimesList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"crimes": s.crimes.List()})
}

func (s *Server) handleCrime(w http.ResponseWriter, r *http.Request) {
	out, err := s.crimes.Resolve(r.Context(), economy.CrimeInput{
		UserID:         chi.URLParam(r, "id"),
		CrimeID:        chi.URLParam(r, "crime_id"),
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleJailStatus(w http.ResponseWriter, r *http.Request) {
	out, err := s.jail.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSentence jails a player on behalf of another game system (gang
// wars, admin actions). Crime failures jail internally and do not use it.
func (s *Server) handleSentence(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Minutes  int    `json:"minutes"`
		Crime    string `json:"crime"`
		Severity int    `json:"severity"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Minutes <= 0 {
		writeError(w, http.StatusBadRequest, "minutes must be > 0")
		return
	}
	out, err := s.jail.SendToJail(r.Context(), economy.SentenceInput{
		UserID:         chi.URLParam(r, "id"),
		Minutes:        body.Minutes,
		Crime:          body.Crime,
		Severity:       body.Severity,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleBribe(w http.ResponseWriter, r *http.Request) {
	out, err := s.jail.Bribe(r.Context(), economy.BribeInput{
		UserID:         chi.URLParam(r, "id"),
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleActionBlocking(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" {
		writeError(w, http.StatusBadRequest, "action query parameter is required")
		return
	}
	out, err := s.jail.CheckActionBlocking(r.Context(), chi.URLParam(r, "id"), action)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAssetTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": s.assets.Templates()})
}

func (s *Server) handleAssetList(w http.ResponseWriter, r *http.Request) {
	out, err := s.assets.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": out})
}

func (s *Server) handleAssetPurchase(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TemplateID    string `json:"template_id"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.assets.Purchase(r.Context(), economy.PurchaseInput{
		UserID:         chi.URLParam(r, "id"),
		TemplateID:     in.TemplateID,
		PaymentMethod:  in.PaymentMethod,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleAssetCollect(w http.ResponseWriter, r *http.Request) {
	out, err := s.assets.CollectAll(r.Context(), economy.CollectInput{
		UserID:         chi.URLParam(r, "id"),
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAssetUpgrade(w http.ResponseWriter, r *http.Request) {
	assetID, err := strconv.ParseInt(chi.URLParam(r, "asset_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	var in struct {
		Kind          string `json:"kind"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.assets.Upgrade(r.Context(), economy.UpgradeInput{
		UserID:         chi.URLParam(r, "id"),
		AssetID:        assetID,
		Kind:           in.Kind,
		PaymentMethod:  in.PaymentMethod,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeDomainError(w http.ResponseWriter, err error) {
	var reqErr *economy.RequirementsError
	switch {
	case errors.As(err, &reqErr):
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":   reqErr.Error(),
			"missing": reqErr.Missing,
		})
	case errors.Is(err, economy.ErrNotFound), errors.Is(err, economy.ErrUnsupportedAsset):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, economy.ErrJailed), errors.Is(err, economy.ErrCooldown):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, economy.ErrInsufficientFunds),
		errors.Is(err, economy.ErrInsufficientHoldings),
		errors.Is(err, economy.ErrCannotAfford),
		errors.Is(err, economy.ErrLimitExceeded),
		errors.Is(err, economy.ErrNotInJail),
		errors.Is(err, economy.ErrNoAssets),
		errors.Is(err, economy.ErrNothingToCollect):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, economy.ErrMaxLevel), errors.Is(err, economy.ErrMaxTier):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, economy.ErrAlreadyJailed),
		errors.Is(err, economy.ErrDuplicateIdempotency),
		errors.Is(err, economy.ErrTxConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
