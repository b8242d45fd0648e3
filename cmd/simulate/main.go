package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hackgods/practice-scheduling/internal/logging"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	Patients     int
	BookingRatio float64
	ReviewRatio  float64
	ReadRatio    float64
}

// slotRef is a bookable slot as offered by GET /slots.
type slotRef struct {
	Date         string
	Time         string
	SpecialistID string
	Venue        string
	Service      string
}

type bookedRef struct {
	ID     string
	Status string
}

type DataPool struct {
	Emails   []string
	Slots    []slotRef
	mu       sync.Mutex
	bookings []bookedRef
}

func (dp *DataPool) AddBooking(b bookedRef) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.bookings = append(dp.bookings, b)
}

func (dp *DataPool) RandomBooking(rng *rand.Rand) (int, bookedRef, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if len(dp.bookings) == 0 {
		return 0, bookedRef{}, false
	}
	i := rng.Intn(len(dp.bookings))
	return i, dp.bookings[i], true
}

func (dp *DataPool) SetStatus(i int, status string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.bookings[i].Status = status
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95, max time.Duration) {
	om.mu.Lock()
	latencies := append([]time.Duration(nil), om.Latencies...)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))
	p50 = latencies[len(latencies)*50/100]
	p95 = latencies[min(len(latencies)*95/100, len(latencies)-1)]
	max = latencies[len(latencies)-1]
	return avg, p50, p95, max
}

type Metrics struct {
	Booking OperationMetrics
	Review  OperationMetrics
	List    OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	logger  *zap.Logger
}

func main() {
	_ = godotenv.Load()

	logger, err := logging.New(getEnv("APP_ENV", "dev"), getEnv("LOG_LEVEL", "info"))
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := loadConfig()
	if cfg.Workers <= 0 || cfg.Duration <= 0 || cfg.Patients <= 0 {
		logger.Fatal("SIM_WORKERS, SIM_DURATION and SIM_PATIENTS must be positive")
	}
	logger.Info("simulator starting",
		zap.String("api", cfg.APIBaseURL),
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
	)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := sim.loadDataPool(ctx)
	cancel()
	if err != nil {
		logger.Fatal("load data pool", zap.Error(err))
	}
	sim.pool = pool
	logger.Info("data pool loaded", zap.Int("patients", len(pool.Emails)), zap.Int("slots", len(pool.Slots)))

	sim.Run()
	doubles, err := sim.countDoubleBookings()
	if err != nil {
		logger.Error("verify bookings", zap.Error(err))
	}
	sim.PrintReport(doubles)
	if doubles > 0 {
		os.Exit(1)
	}
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		Patients:     getInt("SIM_PATIENTS", 200),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		ReviewRatio:  getFloat("SIM_REVIEW_RATIO", 0.2),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.ReviewRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.ReviewRatio /= total
		cfg.ReadRatio /= total
	}
	return cfg
}

// loadDataPool fakes a patient population and collects every offered slot
// together with a service its specialist provides.
func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	faker := gofakeit.New(uint64(time.Now().UnixNano()))
	pool := &DataPool{}
	for i := 0; i < s.config.Patients; i++ {
		pool.Emails = append(pool.Emails, fmt.Sprintf("sim.%d.%s", i, strings.ToLower(faker.Email())))
	}

	var specialists []struct {
		ID       string   `json:"id"`
		Services []string `json:"services"`
	}
	if err := s.getJSON(ctx, "/specialists", "admin", "", &specialists); err != nil {
		return nil, fmt.Errorf("load specialists: %w", err)
	}

	for _, spec := range specialists {
		if len(spec.Services) == 0 {
			continue
		}
		var resp struct {
			Days []struct {
				Date  string `json:"date"`
				Slots []struct {
					Time  string `json:"time"`
					Venue string `json:"venue"`
				} `json:"slots"`
			} `json:"days"`
		}
		if err := s.getJSON(ctx, "/slots?specialist_id="+spec.ID, "patient", "", &resp); err != nil {
			return nil, fmt.Errorf("load slots for %s: %w", spec.ID, err)
		}
		for _, day := range resp.Days {
			for _, slot := range day.Slots {
				pool.Slots = append(pool.Slots, slotRef{
					Date:         day.Date,
					Time:         slot.Time,
					SpecialistID: spec.ID,
					Venue:        slot.Venue,
					Service:      spec.Services[0],
				})
			}
		}
	}

	if len(pool.Slots) == 0 {
		return nil, fmt.Errorf("no slots offered")
	}
	return pool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}
	wg.Wait()
	s.logger.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng)
		case r < s.config.BookingRatio+s.config.ReviewRatio:
			s.doReview(ctx, rng)
		default:
			s.doList(ctx, rng)
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	slot := s.pool.Slots[rng.Intn(len(s.pool.Slots))]
	email := s.pool.Emails[rng.Intn(len(s.pool.Emails))]

	body := map[string]any{
		"date":            slot.Date,
		"time":            slot.Time,
		"specialist_id":   slot.SpecialistID,
		"location":        slot.Venue,
		"service_type_id": slot.Service,
		"patient":         map[string]string{"name": "Sim Patient", "email": email},
	}

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	start := time.Now()
	status, err := s.send(ctx, http.MethodPost, "/appointments", "patient", email, body, &created)
	success := err == nil && status == http.StatusCreated
	if success {
		s.pool.AddBooking(bookedRef{ID: created.ID, Status: created.Status})
	}
	// an offered slot someone else just took answers 404 or 409
	s.metrics.Booking.Record(time.Since(start), success, status == http.StatusConflict || status == http.StatusNotFound)
}

// doReview moves a booking one step along pending -> pending_payment ->
// confirmed, occasionally rejecting instead.
func (s *Simulator) doReview(ctx context.Context, rng *rand.Rand) {
	i, b, ok := s.pool.RandomBooking(rng)
	if !ok {
		return
	}

	var (
		path string
		body any
	)
	switch {
	case rng.Intn(10) == 0:
		path = "/admin/appointments/" + b.ID + "/reject"
	case b.Status == "pending":
		path = "/admin/appointments/" + b.ID + "/approve"
	case b.Status == "pending_payment":
		path = "/admin/appointments/" + b.ID + "/confirm-payment"
		body = map[string]string{"method": "transfer"}
	default:
		return
	}

	var updated struct {
		Status string `json:"status"`
	}
	start := time.Now()
	status, err := s.send(ctx, http.MethodPost, path, "admin", "", body, &updated)
	success := err == nil && status == http.StatusOK
	if success {
		s.pool.SetStatus(i, updated.Status)
	}
	s.metrics.Review.Record(time.Since(start), success, status == http.StatusConflict)
}

func (s *Simulator) doList(ctx context.Context, rng *rand.Rand) {
	email := s.pool.Emails[rng.Intn(len(s.pool.Emails))]

	start := time.Now()
	status, err := s.send(ctx, http.MethodGet, "/appointments", "patient", email, nil, nil)
	s.metrics.List.Record(time.Since(start), err == nil && status == http.StatusOK, false)
}

// countDoubleBookings lists every appointment as admin and counts live ones
// sharing a (date, time, specialist) key.
func (s *Simulator) countDoubleBookings() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var resp struct {
		Appointments []struct {
			Date         string `json:"date"`
			Time         string `json:"time"`
			SpecialistID string `json:"specialist_id"`
			Status       string `json:"status"`
		} `json:"appointments"`
	}
	if err := s.getJSON(ctx, "/appointments", "admin", "", &resp); err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	doubles := 0
	for _, a := range resp.Appointments {
		if a.Status == "rejected" {
			continue
		}
		key := a.Date + " " + a.Time + " " + a.SpecialistID
		if seen[key] {
			doubles++
		}
		seen[key] = true
	}
	return doubles, nil
}

func (s *Simulator) getJSON(ctx context.Context, path, role, email string, out any) error {
	status, err := s.send(ctx, http.MethodGet, path, role, email, nil, out)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, status)
	}
	return nil
}

func (s *Simulator) send(ctx context.Context, method, path, role, email string, body, out any) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Role", role)
	if email != "" {
		req.Header.Set("X-User-Email", email)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (s *Simulator) PrintReport(doubles int) {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Offered slots: %d\n", len(s.pool.Slots))
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Review", &s.metrics.Review)
	printOperationReport("List", &s.metrics.List)

	fmt.Printf("Double bookings: %d\n", doubles)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)
	avg, p50, p95, max := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s p50=%s p95=%s max=%s\n",
		avg.Round(time.Millisecond), p50.Round(time.Millisecond),
		p95.Round(time.Millisecond), max.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
