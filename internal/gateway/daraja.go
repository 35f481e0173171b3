package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/saccotech/sacco-engine/internal/config"
	"github.com/saccotech/sacco-engine/internal/domain"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
)

// DarajaGateway talks to Safaricom's Daraja API.
type DarajaGateway struct {
	cfg    *config.Config
	client *http.Client
}

func NewDarajaGateway(cfg *config.Config) *DarajaGateway {
	return &DarajaGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type darajaTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type darajaSTKResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
}

type darajaQueryResponse struct {
	ResponseCode string `json:"ResponseCode"`
	ResultCode   string `json:"ResultCode"`
	ResultDesc   string `json:"ResultDesc"`
}

func (g *DarajaGateway) accessToken(ctx context.Context) (string, error) {
	url := g.cfg.Mpesa.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	creds := base64.StdEncoding.EncodeToString([]byte(g.cfg.Mpesa.ConsumerKey + ":" + g.cfg.Mpesa.Secret))
	req.Header.Set("Authorization", "Basic "+creds)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", customError.WrapGatewayError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", customError.WrapGatewayError(fmt.Errorf("token request returned %d", resp.StatusCode))
	}

	var token darajaTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", customError.WrapGatewayError(err)
	}
	return token.AccessToken, nil
}

func (g *DarajaGateway) password(timestamp string) string {
	raw := g.cfg.Mpesa.ShortCode + g.cfg.Mpesa.Passkey + timestamp
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func (g *DarajaGateway) InitiateSTKPush(ctx context.Context, in *domain.STKPushRequest) (*domain.STKPushResponse, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	payload := map[string]interface{}{
		"BusinessShortCode": g.cfg.Mpesa.ShortCode,
		"Password":          g.password(timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            in.Amount.Round(0).String(),
		"PartyA":            in.Phone,
		"PartyB":            g.cfg.Mpesa.ShortCode,
		"PhoneNumber":       in.Phone,
		"CallBackURL":       g.cfg.Mpesa.CallbackURL,
		"AccountReference":  in.AccountRef,
		"TransactionDesc":   in.Narrative,
	}

	var out darajaSTKResponse
	if err := g.post(ctx, token, "/mpesa/stkpush/v1/processrequest", payload, &out); err != nil {
		return nil, err
	}

	status := domain.PaymentStatusPending
	if out.ResponseCode != "0" {
		status = domain.PaymentStatusFailed
	}

	return &domain.STKPushResponse{
		RequestID: out.CheckoutRequestID,
		Status:    status,
		Provider:  domain.PaymentProviderMpesa,
	}, nil
}

func (g *DarajaGateway) QueryTransaction(ctx context.Context, externalID string) (string, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102150405")
	payload := map[string]interface{}{
		"BusinessShortCode": g.cfg.Mpesa.ShortCode,
		"Password":          g.password(timestamp),
		"Timestamp":         timestamp,
		"CheckoutRequestID": externalID,
	}

	var out darajaQueryResponse
	if err := g.post(ctx, token, "/mpesa/stkpushquery/v1/query", payload, &out); err != nil {
		return "", err
	}

	switch out.ResultCode {
	case "0":
		return domain.PaymentStatusSuccess, nil
	case "":
		return domain.PaymentStatusPending, nil
	default:
		return domain.PaymentStatusFailed, nil
	}
}

func (g *DarajaGateway) RegisterWebhook(ctx context.Context, url string) error {
	token, err := g.accessToken(ctx)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"ShortCode":       g.cfg.Mpesa.ShortCode,
		"ResponseType":    "Completed",
		"ConfirmationURL": url,
		"ValidationURL":   url,
	}

	return g.post(ctx, token, "/mpesa/c2b/v1/registerurl", payload, &struct{}{})
}

func (g *DarajaGateway) post(ctx context.Context, token, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Mpesa.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return customError.WrapGatewayError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return customError.WrapGatewayError(fmt.Errorf("%s returned %d", path, resp.StatusCode))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
