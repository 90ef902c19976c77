// Package cli implements the operator console used to provision accounts.
// It prompts for the user's details and calls the registration endpoint of a
// running server.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mesadesk/ticketdesk/internal/common"
)

type App struct {
	baseURL    string
	httpClient *http.Client
	in         *bufio.Reader
	out        io.Writer
}

func NewApp(baseURL string, in io.Reader, out io.Writer) *App {
	return &App{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		in:         bufio.NewReader(in),
		out:        out,
	}
}

type registerRequest struct {
	Name          string `json:"name"`
	PayrollNumber int    `json:"payrollNumber"`
	Password      string `json:"password"`
	Role          string `json:"role"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Register walks the operator through creating an account.
func (a *App) Register(ctx context.Context) error {

	name, err := GetSimpleText(a.in, "Enter full name", a.out)
	if err != nil {
		return err
	}

	payrollText, err := GetSimpleText(a.in, "Enter payroll number", a.out)
	if err != nil {
		return err
	}
	payrollNumber, err := strconv.Atoi(payrollText)
	if err != nil || payrollNumber < 1 {
		return fmt.Errorf("invalid payroll number %q", payrollText)
	}

	role, err := GetSimpleText(a.in, "Enter role (Admin or Support)", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.register(ctx, name, payrollNumber, string(password), role); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) register(ctx context.Context, name string, payrollNumber int, password, role string) error {
	payload, err := json.Marshal(registerRequest{
		Name:          name,
		PayrollNumber: payrollNumber,
		Password:      password,
		Role:          role,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/Auth/Register", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		return nil
	}

	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("registration failed: %s", body.Error)
	}
	return fmt.Errorf("registration failed: status %d", resp.StatusCode)
}
