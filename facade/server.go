package facade

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/corvuschain/corvus-sim-go/common/types"
	"github.com/corvuschain/corvus-sim-go/iservices"
	"github.com/corvuschain/corvus-sim-go/node"
)

var WebServerName = "webserver"

// WebServer is the REST front of a running simulator node.
type WebServer struct {
	ctx *node.ServiceContext
	log *logrus.Logger
	srv *http.Server
}

func NewWebServer(ctx *node.ServiceContext) (*WebServer, error) {
	return &WebServer{ctx: ctx}, nil
}

func (s *WebServer) Start(node *node.Node) error {
	s.log = node.Log
	svc, err := s.ctx.Service(iservices.ChainServerName)
	if err != nil {
		return err
	}
	f, err := NewSimulatorFacade(svc.(iservices.IChainService), s.ctx.Config(), s.log)
	if err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)
	s.srv = &http.Server{
		Addr:    s.ctx.Config().HTTPEndpoint(),
		Handler: NewRouter(f),
	}
	go func() {
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Fatalf("ListenAndServe(): %s", err)
		}
	}()
	s.log.Infof("web server listening on %s", s.srv.Addr)
	return nil
}

func (s *WebServer) Stop() error {
	if s.srv != nil {
		_ = s.srv.Shutdown(context.TODO())
	}
	return nil
}

//
// gin router and handlers
//

const (
	codeSuccess    = "successful"
	codeBadRequest = "bad_request"
	codeInternal   = "internal_issue"
)

// response is the envelope every endpoint answers with.
type response struct {
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error"`
	Code  string      `json:"code"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, response{Data: data, Code: codeSuccess})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response{Error: err.Error(), Code: codeBadRequest})
}

func respondInternal(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, response{Error: err.Error(), Code: codeInternal})
}

type webHandler struct {
	facade *SimulatorFacade
}

func NewRouter(f *SimulatorFacade) *gin.Engine {
	h := &webHandler{facade: f}
	router := gin.New()
	router.Use(gin.Recovery())

	sim := router.Group("/simulator")
	sim.POST("/generate-blocks/:num", h.generateBlocks)
	sim.POST("/generate-blocks-until-epoch-reached/:epoch", h.generateBlocksUntilEpochReached)
	sim.POST("/generate-blocks-until-transaction-processed/:txHash", h.generateBlocksUntilTransactionProcessed)
	sim.POST("/set-state", h.setState)
	sim.POST("/address/:address/set-balance", h.setBalance)
	sim.POST("/add-keys", h.addKeys)
	sim.POST("/force-epoch-change", h.forceEpochChange)
	sim.POST("/force-update-validator-statistics", h.forceUpdateValidatorStatistics)

	router.POST("/transaction/send", h.sendTransaction)
	router.GET("/transaction/:txHash", h.getTransaction)
	router.GET("/address/:address", h.getAccount)
	router.GET("/address/:address/balance", h.getBalance)
	router.GET("/network/status", h.networkStatus)
	router.GET("/network/config", h.networkConfig)
	router.GET("/validator/statistics", h.validatorStatistics)

	return router
}

func (h *webHandler) generateBlocks(c *gin.Context) {
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil {
		respondBadRequest(c, ErrInvalidNumOfBlocks.Format(c.Param("num")))
		return
	}
	if err := h.facade.GenerateBlocks(num); err != nil {
		respondBadRequest(c, err)
		return
	}
	respondOK(c, gin.H{"blocksGenerated": num})
}

func (h *webHandler) generateBlocksUntilEpochReached(c *gin.Context) {
	epoch, err := strconv.ParseUint(c.Param("epoch"), 10, 32)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.facade.GenerateBlocksUntilEpochReached(uint32(epoch)); err != nil {
		respondInternal(c, err)
		return
	}
	respondOK(c, h.facade.NetworkStatus())
}

func (h *webHandler) generateBlocksUntilTransactionProcessed(c *gin.Context) {
	result, err := h.facade.GenerateBlocksUntilTransactionProcessed(c.Param("txHash"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	respondOK(c, result)
}

func (h *webHandler) setState(c *gin.Context) {
	var states []types.AddressState
	if err := c.ShouldBindJSON(&states); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.facade.SetStateMultiple(states); err != nil {
		respondBadRequest(c, err)
		return
	}
	respondOK(c, gin.H{"stateSet": len(states)})
}

func (h *webHandler) setBalance(c *gin.Context) {
	var body struct {
		Balance string `json:"balance"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.facade.SetBalance(c.Param("address"), body.Balance); err != nil {
		respondBadRequest(c, err)
		return
	}
	respondOK(c, gin.H{"address": c.Param("address"), "balance": body.Balance})
}

func (h *webHandler) addKeys(c *gin.Context) {
	var body struct {
		ValidatorKeys []string `json:"validatorKeys"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.facade.AddValidatorKeys(body.ValidatorKeys); err != nil {
		respondBadRequest(c, err)
		return
	}
	respondOK(c, gin.H{"keysAdded": len(body.ValidatorKeys)})
}

func (h *webHandler) forceEpochChange(c *gin.Context) {
	if err := h.facade.ForceEpochChange(); err != nil {
		respondInternal(c, err)
		return
	}
	respondOK(c, h.facade.NetworkStatus())
}

func (h *webHandler) forceUpdateValidatorStatistics(c *gin.Context) {
	h.facade.ForceUpdateValidatorStatistics()
	respondOK(c, gin.H{"message": "validator statistics cache reset"})
}

func (h *webHandler) sendTransaction(c *gin.Context) {
	var tx types.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		respondBadRequest(c, err)
		return
	}
	hash, err := h.facade.SendTransaction(&tx)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	respondOK(c, gin.H{"txHash": hash})
}

func (h *webHandler) getTransaction(c *gin.Context) {
	withResults, _ := strconv.ParseBool(c.DefaultQuery("withResults", "false"))
	tx, err := h.facade.GetTransaction(c.Param("txHash"), withResults)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	respondOK(c, tx)
}

func (h *webHandler) getAccount(c *gin.Context) {
	account, err := h.facade.GetAccount(c.Param("address"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	respondOK(c, account)
}

func (h *webHandler) getBalance(c *gin.Context) {
	balance, err := h.facade.GetBalance(c.Param("address"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	respondOK(c, gin.H{"balance": balance.String()})
}

func (h *webHandler) networkStatus(c *gin.Context) {
	respondOK(c, h.facade.NetworkStatus())
}

func (h *webHandler) networkConfig(c *gin.Context) {
	respondOK(c, h.facade.NetworkConfig())
}

func (h *webHandler) validatorStatistics(c *gin.Context) {
	stats, err := h.facade.ValidatorStatistics()
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondOK(c, stats)
}
