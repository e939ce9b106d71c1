package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/doctors-portal/internal/events"
	"github.com/harentsoaR/doctors-portal/internal/logger"
	"github.com/harentsoaR/doctors-portal/internal/models"
	"github.com/harentsoaR/doctors-portal/internal/services"
	"github.com/harentsoaR/doctors-portal/internal/store"
	"github.com/harentsoaR/doctors-portal/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGateway struct{}

func (stubGateway) CreateIntent(_ context.Context, amount int64) (string, error) {
	return "secret_for_" + primitive.NewObjectID().Hex(), nil
}

type testServer struct {
	router *gin.Engine
	store  *store.MemoryStore
	tokens *utils.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()

	s := store.NewMemoryStore()
	require.NoError(t, s.UpsertTreatment(ctx, models.TreatmentOption{Name: "Cleaning", Slots: []string{"9AM", "10AM"}, Price: 120}))
	require.NoError(t, s.UpsertTreatment(ctx, models.TreatmentOption{Name: "Whitening", Slots: []string{"1PM"}, Price: 400}))
	_, err := s.CreateUser(ctx, &models.User{Email: "admin@x.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)

	tokens := utils.NewTokenManager("secret", time.Hour)
	notify := services.NewNotificationService(events.NewLogPublisher(log), log)
	users := services.NewUserService(s, tokens, bcrypt.MinCost, log)
	h := NewHandler(
		services.NewBookingService(s, notify, log),
		services.NewPaymentService(s, stubGateway{}, notify, log),
		users,
		services.NewDoctorService(s, log),
		log,
	)

	r := gin.New()
	h.Register(r, tokens)
	return &testServer{router: r, store: s, tokens: tokens}
}

func (ts *testServer) token(t *testing.T, email string) string {
	t.Helper()
	token, err := ts.tokens.GenerateJWT(email)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func booking(date, email, treatment, slot string) gin.H {
	return gin.H{"appointmentDate": date, "email": email, "treatment": treatment, "slot": slot, "patient": "Pat", "price": 120}
}

func TestRoot(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Doctors portal server is running", w.Body.String())
}

func TestAppointmentOptionsScenario(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "a@x.com")

	w := ts.do(t, http.MethodPost, "/bookings", token, booking("2024-01-05", "a@x.com", "Cleaning", "9AM"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/appointmentOptions?date=2024-01-05", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	options := decode[[]models.TreatmentOption](t, w)
	require.Len(t, options, 2)
	assert.Equal(t, "Cleaning", options[0].Name)
	assert.Equal(t, []string{"10AM"}, options[0].Slots)
	assert.Equal(t, []string{"1PM"}, options[1].Slots)

	w = ts.do(t, http.MethodGet, "/appointmentOptions?date=2024-01-06", "", nil)
	options = decode[[]models.TreatmentOption](t, w)
	assert.Equal(t, []string{"9AM", "10AM"}, options[0].Slots)

	w = ts.do(t, http.MethodGet, "/appointmentOptions", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFullyBookedOptionHasEmptySlotArray(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/bookings", ts.token(t, "a@x.com"), booking("d", "a@x.com", "Whitening", "1PM"))
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/appointmentOptions?date=d", "", nil)
	assert.Contains(t, w.Body.String(), `"name":"Whitening","slots":[]`)
}

func TestAppointmentSpeciality(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/appointmentSpeciality", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"Cleaning"},{"name":"Whitening"}]`, w.Body.String())
}

func TestCreateBookingTwice(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "a@x.com")

	w := ts.do(t, http.MethodPost, "/bookings", token, booking("2024-02-01", "a@x.com", "Cleaning", "9AM"))
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[map[string]any](t, w)
	assert.Equal(t, true, created["acknowledged"])
	assert.NotEmpty(t, created["insertedId"])

	w = ts.do(t, http.MethodPost, "/bookings", token, booking("2024-02-01", "a@x.com", "Cleaning", "9AM"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"acknowledged":false,"message":"You already have a booking on 2024-02-01"}`, w.Body.String())
}

func TestCreateBookingAuth(t *testing.T) {
	ts := newTestServer(t)
	body := booking("2024-02-01", "a@x.com", "Cleaning", "9AM")

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, "/bookings", "", body).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, "/bookings", "bad.token.here", body).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, "/bookings", ts.token(t, "b@x.com"), body).Code)
}

func TestCreateBookingValidation(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/bookings", ts.token(t, "a@x.com"), gin.H{"appointmentDate": "d", "email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBookings(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "a@x.com")
	ts.do(t, http.MethodPost, "/bookings", token, booking("d1", "a@x.com", "Cleaning", "9AM"))
	ts.do(t, http.MethodPost, "/bookings", token, booking("d2", "a@x.com", "Cleaning", "9AM"))

	w := ts.do(t, http.MethodGet, "/bookings?email=a@x.com", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Booking](t, w), 2)

	w = ts.do(t, http.MethodGet, "/bookings?email=b@x.com", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/bookings?email=a@x.com", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetBookingByID(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "a@x.com")
	w := ts.do(t, http.MethodPost, "/bookings", token, booking("d1", "a@x.com", "Cleaning", "9AM"))
	id := decode[map[string]any](t, w)["insertedId"].(string)

	w = ts.do(t, http.MethodGet, "/bookings/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9AM", decode[models.Booking](t, w).Slot)

	w = ts.do(t, http.MethodGet, "/bookings/"+id, ts.token(t, "b@x.com"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/bookings/"+primitive.NewObjectID().Hex(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/bookings/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersAndAdmin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/users", "", gin.H{"name": "Sam", "email": "sam@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	samID := decode[map[string]any](t, w)["insertedId"].(string)

	w = ts.do(t, http.MethodPost, "/users", "", gin.H{"name": "Sam", "email": "sam@x.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodGet, "/users", "", nil)
	assert.Len(t, decode[[]models.User](t, w), 3)

	w = ts.do(t, http.MethodGet, "/users/admin/admin@x.com", "", nil)
	assert.JSONEq(t, `{"isAdmin":true}`, w.Body.String())
	w = ts.do(t, http.MethodGet, "/users/admin/sam@x.com", "", nil)
	assert.JSONEq(t, `{"isAdmin":false}`, w.Body.String())

	w = ts.do(t, http.MethodPut, "/users/admin/"+samID, ts.token(t, "a@x.com"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPut, "/users/admin/"+samID, ts.token(t, "admin@x.com"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acknowledged":true,"modifiedCount":1}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/users/admin/sam@x.com", "", nil)
	assert.JSONEq(t, `{"isAdmin":true}`, w.Body.String())

	w = ts.do(t, http.MethodPut, "/users/admin/a@x.com", ts.token(t, "admin@x.com"), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPut, "/users/admin/ghost@x.com", ts.token(t, "admin@x.com"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIssueJWT(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/jwt?email=a@x.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[map[string]string](t, w)["accessToken"]
	claims, err := ts.tokens.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)

	w = ts.do(t, http.MethodGet, "/jwt?email=ghost@x.com", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"accessToken":""}`, w.Body.String())
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/users", "", gin.H{"email": "pw@x.com", "password": "long-enough"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/login", "", gin.H{"email": "pw@x.com", "password": "long-enough"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string]string](t, w)["accessToken"])

	w = ts.do(t, http.MethodPost, "/login", "", gin.H{"email": "pw@x.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDoctorsAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(t, "admin@x.com")
	patient := ts.token(t, "a@x.com")
	doctor := gin.H{"name": "Dr. Molar", "email": "molar@x.com", "specialty": "Cleaning"}

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/doctors", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/doctors", patient, nil).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, "/doctors", patient, doctor).Code)

	w := ts.do(t, http.MethodPost, "/doctors", admin, doctor)
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[map[string]any](t, w)["insertedId"].(string)

	w = ts.do(t, http.MethodGet, "/doctors", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Doctor](t, w), 1)

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodDelete, "/doctors/"+id, patient, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/doctors/"+id, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/doctors/"+id, admin, nil).Code)
}

func TestPaymentFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "a@x.com")

	w := ts.do(t, http.MethodPost, "/create-payment-intent", "", gin.H{"price": 120})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string]string](t, w)["clientSecret"])

	w = ts.do(t, http.MethodPost, "/create-payment-intent", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/bookings", token, booking("d1", "a@x.com", "Cleaning", "9AM"))
	id := decode[map[string]any](t, w)["insertedId"].(string)

	w = ts.do(t, http.MethodPost, "/payments", "", gin.H{"bookingId": id, "email": "a@x.com", "price": 120, "transactionId": "pi_42"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/bookings/"+id, token, nil)
	paid := decode[models.Booking](t, w)
	assert.True(t, paid.Paid)
	assert.Equal(t, "pi_42", paid.TransactionID)

	w = ts.do(t, http.MethodPost, "/payments", "", gin.H{"bookingId": id, "email": "a@x.com", "price": 120, "transactionId": "pi_other"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(t, http.MethodGet, "/bookings/"+id, token, nil)
	assert.Equal(t, "pi_42", decode[models.Booking](t, w).TransactionID)

	w = ts.do(t, http.MethodPost, "/payments", "", gin.H{"bookingId": primitive.NewObjectID().Hex(), "transactionId": "pi_43"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
