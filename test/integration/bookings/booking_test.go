//go:build integration

package bookings

import (
	"agendo/test/integration/testutil"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

var day = time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

type bookingResponse struct {
	Data struct {
		ID        string    `json:"id"`
		TenantID  string    `json:"tenant_id"`
		Status    string    `json:"status"`
		Price     int64     `json:"price"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
	} `json:"data"`
}

func setup(t *testing.T) (*testutil.MongoHelper, *testutil.Client) {
	t.Helper()
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	t.Cleanup(func() { env.Cleanup(t, mongo) })

	mongo.SeedTenant(t, "1", true)
	mongo.SeedTenant(t, "2", true)
	mongo.SeedTenant(t, "3", false)
	return mongo, client
}

func createService(t *testing.T, client *testutil.Client, durationMin int, price int64) string {
	t.Helper()
	resp := client.POST(t, "/api/v1/services", testutil.NewService("Haircut", durationMin, price))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := resp.DecodeJSON(&out); err != nil {
		t.Fatalf("failed to decode service: %v", err)
	}
	return out.Data.ID
}

func createBooking(t *testing.T, client *testutil.Client, body map[string]any) (*testutil.Response, bookingResponse) {
	t.Helper()
	resp := client.POST(t, "/api/v1/bookings", body)
	var out bookingResponse
	if resp.StatusCode == http.StatusCreated {
		if err := resp.DecodeJSON(&out); err != nil {
			t.Fatalf("failed to decode booking: %v", err)
		}
	}
	return resp, out
}

func TestBookingLifecycle(t *testing.T) {
	_, base := setup(t)
	client := base.AsTenant("1")
	serviceID := createService(t, client, 60, 100)

	resp, a := createBooking(t, client, testutil.NewBookingBuilder(serviceID, day).WithProfessional("5").Build())
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	if !a.Data.EndTime.Equal(day.Add(time.Hour)) || a.Data.Status != "pending" || a.Data.Price != 100 {
		t.Fatalf("unexpected booking: %+v", a.Data)
	}

	resp, _ = createBooking(t, client, testutil.NewBookingBuilder(serviceID, day.Add(30*time.Minute)).WithProfessional("5").Build())
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	if code := testutil.GetErrorCode(t, resp); code != "SCHEDULING_CONFLICT" {
		t.Fatalf("expected SCHEDULING_CONFLICT, got %s", code)
	}

	resp, _ = createBooking(t, client, testutil.NewBookingBuilder(serviceID, day.Add(time.Hour)).WithProfessional("5").Build())
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = client.PATCH(t, "/api/v1/bookings/id/"+a.Data.ID+"/status", map[string]any{"status": "cancelled"})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp, _ = createBooking(t, client, testutil.NewBookingBuilder(serviceID, day.Add(-30*time.Minute)).WithProfessional("5").Build())
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
}

func TestTenantIsolation(t *testing.T) {
	_, base := setup(t)
	one, two := base.AsTenant("1"), base.AsTenant("2")
	serviceOne := createService(t, one, 60, 100)
	serviceTwo := createService(t, two, 60, 100)

	resp, b := createBooking(t, one, testutil.NewBookingBuilder(serviceOne, day).WithProfessional("5").WithField("tenant_id", "2").Build())
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	if b.Data.TenantID != "1" {
		t.Fatalf("tenant must come from the resolved caller, got %s", b.Data.TenantID)
	}

	resp, _ = createBooking(t, two, testutil.NewBookingBuilder(serviceTwo, day).WithProfessional("5").Build())
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	testutil.AssertStatusCode(t, two.GET(t, "/api/v1/bookings/id/"+b.Data.ID), http.StatusNotFound)

	resp, _ = createBooking(t, two, testutil.NewBookingBuilder(serviceOne, day.Add(3*time.Hour)).Build())
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	if code := testutil.GetErrorCode(t, resp); code != "SERVICE_NOT_FOUND" {
		t.Fatalf("expected SERVICE_NOT_FOUND, got %s", code)
	}
}

func TestTenantRequired(t *testing.T) {
	_, base := setup(t)

	testutil.AssertStatusCode(t, base.GET(t, "/api/v1/bookings"), http.StatusForbidden)
	testutil.AssertStatusCode(t, base.AsTenant("3").GET(t, "/api/v1/bookings"), http.StatusForbidden)
	testutil.AssertStatusCode(t, base.AsTenant("404").GET(t, "/api/v1/bookings"), http.StatusForbidden)
}

func TestConcurrentCreates(t *testing.T) {
	mongo, base := setup(t)
	client := base.AsTenant("1")
	serviceID := createService(t, client, 60, 100)

	const callers = 10
	var wg sync.WaitGroup
	statuses := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, _ := createBooking(t, client, testutil.NewBookingBuilder(serviceID, day).
				WithProfessional("5").
				WithField("customer_id", fmt.Sprintf("customer-%d", i)).
				Build())
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	created := 0
	for _, status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Fatalf("unexpected status %d", status)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one booking, got %d", created)
	}
	if n := mongo.CountDocuments(t, testutil.BookingsCollection, bson.M{"tenant_id": "1", "professional_id": "5"}); n != 1 {
		t.Fatalf("expected one stored booking, got %d", n)
	}
}
