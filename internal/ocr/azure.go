package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/betonpro/tradelinkpro/pkg/apperror"
)

const (
	apiVersion          = "2023-07-31"
	defaultPollInterval = time.Second
	defaultMaxPolls     = 30
)

// Result holds the contact fields extracted from a business card.
// Either field may be empty when nothing usable was detected.
type Result struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Client talks to the Azure Document Intelligence prebuilt business
// card model. The analyze call is asynchronous: a submission is
// accepted with an Operation-Location, which is then polled until a
// terminal status or the attempt ceiling.
type Client struct {
	endpoint string
	key      string
	httpc    *http.Client

	pollInterval time.Duration
	maxPolls     int
}

func NewClient(endpoint, key string) *Client {
	return &Client{
		endpoint:     endpoint,
		key:          key,
		httpc:        &http.Client{Timeout: 30 * time.Second},
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
	}
}

// Configured reports whether both endpoint and credential are set.
func (c *Client) Configured() bool {
	return c.endpoint != "" && c.key != ""
}

// Analyze submits the image and blocks until a terminal status, a
// poll error ceiling, or ctx cancellation. Structural mismatches in a
// successful response yield an empty Result, never an error.
func (c *Client) Analyze(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	if !c.Configured() {
		return nil, apperror.New(http.StatusInternalServerError,
			"Configuration Azure manquante", apperror.ErrNotConfigured)
	}

	resultURL, err := c.submit(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}

	payload, err := c.poll(ctx, resultURL)
	if err != nil {
		return nil, err
	}

	return extract(payload), nil
}

func (c *Client) submit(ctx context.Context, image []byte, mimeType string) (string, error) {
	analyzeURL := fmt.Sprintf(
		"%s/formrecognizer/documentModels/prebuilt-businessCard:analyze?api-version=%s",
		strings.TrimRight(c.endpoint, "/"), apiVersion,
	)

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, analyzeURL, bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", apperror.New(http.StatusInternalServerError,
			fmt.Sprintf("Erreur de connexion au service Azure : %v", err), apperror.ErrExternalService)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", apperror.New(http.StatusInternalServerError,
			fmt.Sprintf("Échec de l'analyse : %s", strings.TrimSpace(string(body))), apperror.ErrExternalService)
	}

	resultURL := resp.Header.Get("Operation-Location")
	if resultURL == "" {
		return "", apperror.New(http.StatusInternalServerError,
			"Réponse inattendue du service Azure", apperror.ErrExternalService)
	}
	return resultURL, nil
}

// poll requests the operation location once per interval until a
// terminal status. Request failures are swallowed and the poll
// retried until the ceiling.
func (c *Client) poll(ctx context.Context, resultURL string) (*analyzeResponse, error) {
	for attempt := 0; attempt < c.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		payload, err := c.fetchResult(ctx, resultURL)
		if err != nil {
			continue
		}

		switch payload.Status {
		case "succeeded":
			return payload, nil
		case "failed":
			return nil, apperror.New(http.StatusInternalServerError,
				"Analyse de la carte échouée", apperror.ErrAnalysisFailed)
		}
	}

	return nil, apperror.New(http.StatusInternalServerError,
		"Analyse incomplète", apperror.ErrAnalysisIncomplete)
}

func (c *Client) fetchResult(ctx context.Context, resultURL string) (*analyzeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Response shape consumed from the business card model. Only the
// fields this service reads are declared.
type analyzeResponse struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		Documents []struct {
			Fields struct {
				ContactNames  fieldArray `json:"contactNames"`
				MobilePhones  fieldArray `json:"mobilePhones"`
				CompanyPhones fieldArray `json:"companyPhones"`
			} `json:"fields"`
		} `json:"documents"`
	} `json:"analyzeResult"`
}

type fieldArray struct {
	ValueArray []fieldValue `json:"valueArray"`
}

type fieldValue struct {
	ValueString string `json:"valueString"`
	ValueObject struct {
		FirstName fieldString `json:"firstName"`
		LastName  fieldString `json:"lastName"`
	} `json:"valueObject"`
}

type fieldString struct {
	Value string `json:"value"`
}

// extract pulls the first contact name and the first phone number,
// preferring a mobile number over a company one.
func extract(payload *analyzeResponse) *Result {
	result := &Result{}
	if len(payload.AnalyzeResult.Documents) == 0 {
		return result
	}
	fields := payload.AnalyzeResult.Documents[0].Fields

	for _, item := range fields.ContactNames.ValueArray {
		combined := strings.TrimSpace(
			item.ValueObject.FirstName.Value + " " + item.ValueObject.LastName.Value)
		if combined != "" {
			result.Name = combined
			break
		}
	}

	if phones := fields.MobilePhones.ValueArray; len(phones) > 0 {
		result.Phone = phones[0].ValueString
	}
	if result.Phone == "" {
		if phones := fields.CompanyPhones.ValueArray; len(phones) > 0 {
			result.Phone = phones[0].ValueString
		}
	}

	return result
}
