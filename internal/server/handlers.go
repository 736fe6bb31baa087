package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fakturlu/faktur-accounting/internal/accounting"
	"github.com/fakturlu/faktur-accounting/internal/export"
	"github.com/fakturlu/faktur-accounting/internal/jobs"
	"github.com/fakturlu/faktur-accounting/internal/model"
	"github.com/fakturlu/faktur-accounting/internal/peppol"
	"github.com/fakturlu/faktur-accounting/internal/vat"
)

func (s *Server) handleScenario(c *gin.Context) {
	var req ScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	scenario := s.resolver.DetermineScenario(req.VATRegime, req.ClientCountry, req.ClientType, req.ClientVATNumber)
	c.JSON(http.StatusOK, scenario)
}

func (s *Server) handleValidateNumber(c *gin.Context) {
	var req VATNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	c.JSON(http.StatusOK, VATNumberResponse{
		VATNumber: vat.NormalizeVATNumber(req.VATNumber),
		Valid:     vat.ValidateVATNumber(req.VATNumber, req.Country),
	})
}

func (s *Server) handleEntries(c *gin.Context) {
	var req EntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	entries, err := accounting.BuildEntries(req.Invoices, settingsOrDefault(req.Settings))
	if err != nil {
		writeError(c, err)
		return
	}

	debit, credit := accounting.Totals(entries)
	c.JSON(http.StatusOK, EntriesResponse{
		Entries:     entries,
		TotalDebit:  debit,
		TotalCredit: credit,
	})
}

// handleExport streams the file, or queues it when ?async=true
func (s *Server) handleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	if c.Query("async") == "true" {
		if s.queue == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "background worker not configured"})
			return
		}
		info, err := s.queue.EnqueueExport(c.Request.Context(), jobs.ExportPayload{
			TenantID: req.TenantID,
			Formats:  []string{string(format)},
			Seller:   req.Seller,
			Settings: settingsOrDefault(req.Settings),
			Invoices: req.Invoices,
			From:     req.From,
			To:       req.To,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, QueuedResponse{TaskID: info.ID, Queue: info.Queue})
		return
	}

	file, err := s.exports.Generate(c.Request.Context(), export.Request{
		TenantID: req.TenantID,
		Format:   format,
		Seller:   req.Seller,
		Settings: settingsOrDefault(req.Settings),
		Invoices: req.Invoices,
		From:     req.From,
		To:       req.To,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Header("X-Export-Invoices", fmt.Sprint(file.Invoices))
	c.Header("X-Export-Entries", fmt.Sprint(file.Entries))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (s *Server) handleUBL(c *gin.Context) {
	var req PeppolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	scenario := s.resolver.ForInvoice(&req.Seller, req.Invoice.Client)
	doc, err := peppol.GenerateUBL(&req.Seller, &req.Invoice, scenario)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", doc)
}

// handleSend transmits synchronously, or queues when a worker is attached
func (s *Server) handleSend(c *gin.Context) {
	if s.transmitter == nil {
		writeError(c, model.ErrProviderNotConfigured)
		return
	}

	var req PeppolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	if s.queue != nil {
		// fail fast on documents the worker could never send
		scenario := s.resolver.ForInvoice(&req.Seller, req.Invoice.Client)
		if _, err := peppol.GenerateUBL(&req.Seller, &req.Invoice, scenario); err != nil {
			writeError(c, err)
			return
		}
		info, err := s.queue.EnqueueTransmit(c.Request.Context(), jobs.TransmitPayload{Seller: req.Seller, Invoice: req.Invoice})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, QueuedResponse{TaskID: info.ID, Queue: info.Queue})
		return
	}

	receipt, err := s.transmitter.Transmit(c.Request.Context(), &req.Seller, &req.Invoice)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (s *Server) handleStatus(c *gin.Context) {
	if s.transmitter == nil {
		writeError(c, model.ErrProviderNotConfigured)
		return
	}

	id := c.Param("id")
	status, err := s.transmitter.Status(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{
		DocumentID: id,
		Provider:   s.transmitter.AccessPoint().ProviderName(),
		Status:     status,
	})
}

func settingsOrDefault(s *model.AccountingSettings) model.AccountingSettings {
	if s == nil {
		return model.DefaultAccountingSettings()
	}
	return *s
}

