package asaas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// CreateCustomer: Cria o cliente no Asaas e retorna o ID (cus_xxxx)
func (c *Client) CreateCustomer(ctx context.Context, input CreateCustomerInput) (string, error) {
	payload := createCustomerRequest{
		Name:                 input.Name,
		Email:                input.Email,
		CpfCnpj:              input.CpfCnpj,
		Phone:                input.Phone,
		MobilePhone:          input.MobilePhone,
		ExternalReference:    input.ExternalReference,
		NotificationDisabled: true, // Para não enviar email automático do Asaas
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("erro ao marshal customer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/customers", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	var response customerResponse
	if err := c.do(req, &response); err != nil {
		return "", fmt.Errorf("erro criar cliente asaas: %w", err)
	}
	if response.ID == "" {
		return "", fmt.Errorf("erro criar cliente asaas: resposta sem id")
	}

	return response.ID, nil
}

// GetCheckoutStatus consulta a sessão de checkout e devolve o contrato tipado.
func (c *Client) GetCheckoutStatus(ctx context.Context, checkoutID string) (*CheckoutStatus, error) {
	if strings.TrimSpace(checkoutID) == "" {
		return nil, errors.New("checkout id vazio")
	}

	endpoint := fmt.Sprintf("%s/checkout/%s", c.baseURL, url.PathEscape(checkoutID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	var raw json.RawMessage
	if err := c.do(req, &raw); err != nil {
		return nil, fmt.Errorf("erro consultar checkout %s: %w", checkoutID, err)
	}

	return parseCheckoutStatus(raw)
}

// do executa a request e decodifica o JSON de sucesso em out.
// Falha de rede, timeout e 5xx viram ErrUnavailable.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: erro lendo resposta: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GatewayError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("erro decode asaas: %w", err)
	}
	return nil
}

// setHeaders centraliza os headers obrigatórios
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("access_token", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "LigueConversions/1.0")
}
