package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thlight-panel/internal/application/emailcheck"
	"github.com/thlight-panel/internal/domain"
)

// --- mock ---

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) Issue(ctx context.Context, address string, purpose domain.Purpose) (domain.IssuedOTP, error) {
	args := m.Called(ctx, address, purpose)
	return args.Get(0).(domain.IssuedOTP), args.Error(1)
}

func (m *mockOTPSvc) Verify(ctx context.Context, address, candidate string) (domain.VerifyResult, error) {
	args := m.Called(ctx, address, candidate)
	return args.Get(0).(domain.VerifyResult), args.Error(1)
}

func (m *mockOTPSvc) Status(ctx context.Context, address string) (domain.OTPStatus, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(domain.OTPStatus), args.Error(1)
}

func jsonReq(method, target string, v interface{}) *http.Request {
	body, _ := json.Marshal(v)
	return httptest.NewRequest(method, target, bytes.NewReader(body))
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	return m
}

// --- validate-email ---

func TestValidateEmail_Valid(t *testing.T) {
	h := NewOTPHandler(&mockOTPSvc{}, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.ValidateEmail(rr, jsonReq(http.MethodPost, "/api/validate-email", map[string]string{"email": "alex@gmail.com"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeMap(t, rr)
	assert.Equal(t, true, resp["isValid"])
	assert.Equal(t, "Email is valid", resp["message"])
}

func TestValidateEmail_Invalid(t *testing.T) {
	h := NewOTPHandler(&mockOTPSvc{}, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.ValidateEmail(rr, jsonReq(http.MethodPost, "/api/validate-email", map[string]string{"email": "alex@yahoo.com"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeMap(t, rr)
	assert.Equal(t, false, resp["isValid"])
}

// --- send-otp ---

func TestSendOTP_MissingEmail(t *testing.T) {
	svc := &mockOTPSvc{}
	h := NewOTPHandler(svc, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.Send(rr, jsonReq(http.MethodPost, "/api/send-otp", map[string]string{"purpose": "login"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeMap(t, rr)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Email is required", resp["message"])
	svc.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendOTP_HappyPath_MapsPurpose(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Issue", mock.Anything, "alex@gmail.com", domain.PurposeReset).
		Return(domain.IssuedOTP{Address: "alex@gmail.com"}, nil)
	h := NewOTPHandler(svc, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.Send(rr, jsonReq(http.MethodPost, "/api/send-otp", map[string]string{"email": "alex@gmail.com", "purpose": "reset"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeMap(t, rr)
	assert.Equal(t, true, resp["success"])
	assert.Contains(t, resp["message"], "alex@gmail.com")
	svc.AssertExpectations(t)
}

func TestSendOTP_StoreFailure(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Issue", mock.Anything, mock.Anything, mock.Anything).Return(domain.IssuedOTP{}, errors.New("redis down"))
	h := NewOTPHandler(svc, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.Send(rr, jsonReq(http.MethodPost, "/api/send-otp", map[string]string{"email": "alex@gmail.com"}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Error sending OTP", decodeMap(t, rr)["message"])
}

// --- verify-otp ---

func TestVerifyOTP_MissingFields(t *testing.T) {
	h := NewOTPHandler(&mockOTPSvc{}, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.Verify(rr, jsonReq(http.MethodPost, "/api/verify-otp", map[string]string{"email": "alex@gmail.com"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email and OTP are required", decodeMap(t, rr)["message"])
}

func TestVerifyOTP_Incorrect(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Verify", mock.Anything, "alex@gmail.com", "111111").
		Return(domain.VerifyResult{Reason: domain.VerifyIncorrectCode, Remaining: 1}, nil)
	h := NewOTPHandler(svc, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.Verify(rr, jsonReq(http.MethodPost, "/api/verify-otp", map[string]string{"email": "alex@gmail.com", "otp": "111111"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeMap(t, rr)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Incorrect OTP. 1 attempts remaining.", resp["message"])
}

func TestVerifyOTP_Success(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Verify", mock.Anything, "alex@gmail.com", "123456").
		Return(domain.VerifyResult{Success: true, Reason: domain.VerifyOK}, nil)
	h := NewOTPHandler(svc, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.Verify(rr, jsonReq(http.MethodPost, "/api/verify-otp", map[string]string{"email": "alex@gmail.com", "otp": "123456"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeMap(t, rr)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "OTP verified successfully", resp["message"])
}

// --- otp-status ---

func TestOTPStatus_MissingEmail(t *testing.T) {
	h := NewOTPHandler(&mockOTPSvc{}, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.Status(rr, httptest.NewRequest(http.MethodGet, "/api/otp-status", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOTPStatus_NoRecord(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Status", mock.Anything, "alex@gmail.com").Return(domain.OTPStatus{}, nil)
	h := NewOTPHandler(svc, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.Status(rr, httptest.NewRequest(http.MethodGet, "/api/otp-status?email=alex@gmail.com", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]interface{}{"exists": false}, decodeMap(t, rr))
}

func TestOTPStatus_Pending(t *testing.T) {
	exp := time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC)
	svc := &mockOTPSvc{}
	svc.On("Status", mock.Anything, "alex@gmail.com").
		Return(domain.OTPStatus{Exists: true, ExpiresAt: exp, Attempts: 2}, nil)
	h := NewOTPHandler(svc, emailcheck.New("gmail.com"))
	rr := httptest.NewRecorder()
	h.Status(rr, httptest.NewRequest(http.MethodGet, "/api/otp-status?email=alex@gmail.com", nil))

	resp := decodeMap(t, rr)
	assert.Equal(t, true, resp["exists"])
	assert.Equal(t, "2025-03-01T12:05:00Z", resp["expiry"])
	assert.Equal(t, float64(2), resp["attempts"])
	assert.Equal(t, false, resp["expired"])
}
