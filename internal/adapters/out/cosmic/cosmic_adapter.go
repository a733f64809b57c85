package cosmic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	nurl "net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/cosmicjs/appointment-scheduler/internal/config"
	"github.com/cosmicjs/appointment-scheduler/internal/core/domain"
	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/out"
)

// listPageSize is the per-request object limit when listing bookings.
const listPageSize = 1000

// CosmicAdapter talks to the Cosmic object store over its REST API. Booking
// records live as objects of one type; the site config is a singleton object.
type CosmicAdapter struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	bucket     string
	readKey    string
	writeKey   string
	objectType string
	configSlug string
	pageSize   int
	logger     out.LoggerPort
}

func NewCosmicAdapter(cfg *config.Config, logger out.LoggerPort) *CosmicAdapter {
	return &CosmicAdapter{
		client:     &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.Cosmic.RateLimit), cfg.Cosmic.RateBurst),
		baseURL:    cfg.Cosmic.URL,
		bucket:     cfg.Cosmic.BucketSlug,
		readKey:    cfg.Cosmic.ReadKey,
		writeKey:   cfg.Cosmic.WriteKey,
		objectType: cfg.Cosmic.ObjectType,
		configSlug: cfg.Cosmic.ConfigSlug,
		pageSize:   listPageSize,
		logger:     logger,
	}
}

// Store wire shapes. Dates cross the wire in the year-day-month format the
// bucket has always used; json_types.CalendarDate owns that contract.
type appointmentMetadata struct {
	Date json_types.CalendarDate `json:"date"`
	// Slot is stored as a text metafield, so it crosses the wire quoted.
	Slot  string `json:"slot"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type appointmentObject struct {
	ID       string              `json:"_id"`
	Title    string              `json:"title"`
	Metadata appointmentMetadata `json:"metadata"`
}

type objectsResponse struct {
	Objects []appointmentObject `json:"objects"`
	Total   int                 `json:"total"`
}

type objectResponse struct {
	Object appointmentObject `json:"object"`
}

type configMetadata struct {
	SiteTitle  string `json:"site_title"`
	AboutURL   string `json:"about_url"`
	ContactURL string `json:"contact_url"`
	HomeURL    string `json:"home_url"`
}

type configObjectResponse struct {
	Object struct {
		Metadata configMetadata `json:"metadata"`
	} `json:"object"`
}

type metafield struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type addObjectRequest struct {
	Title      string      `json:"title"`
	TypeSlug   string      `json:"type_slug"`
	WriteKey   string      `json:"write_key"`
	Metafields []metafield `json:"metafields"`
}

type deleteObjectRequest struct {
	WriteKey string `json:"write_key"`
}

// ListBookings pages through the bucket until every object of the booking
// type has been fetched. The schedule is rebuilt from the complete list; a
// truncated read would show booked slots as free, so a short result is an
// error rather than a partial answer.
func (a *CosmicAdapter) ListBookings(ctx context.Context) ([]domain.BookingRecord, error) {
	a.logger.Info("cosmic.bookings.fetch", out.LogFields{})

	var (
		records []domain.BookingRecord
		fetched int
		total   int
	)
	for skip := 0; ; skip += a.pageSize {
		objects, pageTotal, err := a.listPage(ctx, skip)
		if err != nil {
			return nil, err
		}
		total = pageTotal
		fetched += len(objects)

		for _, object := range objects {
			slot, err := strconv.Atoi(object.Metadata.Slot)
			if err != nil {
				a.logger.Warn("cosmic.bookings.invalid_slot", out.LogFields{
					"bookingId": object.ID,
					"slot":      object.Metadata.Slot,
				})
				continue
			}

			records = append(records, domain.BookingRecord{
				ID:    object.ID,
				Date:  object.Metadata.Date,
				Slot:  domain.SlotIndex(slot),
				Name:  object.Title,
				Email: object.Metadata.Email,
				Phone: object.Metadata.Phone,
			})
		}

		if len(objects) < a.pageSize {
			break
		}
		if total > 0 && fetched >= total {
			break
		}
	}

	if fetched < total {
		a.logger.Error("cosmic.bookings.short_read", out.LogFields{
			"fetched": fetched,
			"total":   total,
		})
		return nil, fmt.Errorf("object list truncated: got %d of %d", fetched, total)
	}

	a.logger.Debug("cosmic.bookings.fetch_success", out.LogFields{
		"count": len(records),
		"pages": (fetched + a.pageSize - 1) / a.pageSize,
	})

	return records, nil
}

func (a *CosmicAdapter) listPage(ctx context.Context, skip int) ([]appointmentObject, int, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	url := fmt.Sprintf("%s/%s/objects", a.baseURL, a.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	query := nurl.Values{}
	query.Add("type", a.objectType)
	query.Add("read_key", a.readKey)
	query.Add("limit", strconv.Itoa(a.pageSize))
	query.Add("skip", strconv.Itoa(skip))
	req.URL.RawQuery = query.Encode()

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("cosmic.bookings.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("cosmic.bookings.fetch_failed", out.LogFields{
			"status": resp.StatusCode,
		})
		return nil, 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var listResponse objectsResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResponse); err != nil {
		a.logger.Error("cosmic.bookings.decode_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, 0, err
	}

	return listResponse.Objects, listResponse.Total, nil
}

func (a *CosmicAdapter) CreateBooking(ctx context.Context, record domain.BookingRecord) (domain.BookingRecord, error) {
	a.logger.Info("cosmic.bookings.create", out.LogFields{
		"date": record.Date.String(),
		"slot": int(record.Slot),
	})

	if err := a.limiter.Wait(ctx); err != nil {
		return domain.BookingRecord{}, err
	}

	payload := addObjectRequest{
		Title:    record.Name,
		TypeSlug: a.objectType,
		WriteKey: a.writeKey,
		Metafields: []metafield{
			{Key: "date", Type: "text", Value: record.Date.String()},
			{Key: "slot", Type: "text", Value: strconv.Itoa(int(record.Slot))},
			{Key: "email", Type: "text", Value: record.Email},
			{Key: "phone", Type: "text", Value: record.Phone},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.BookingRecord{}, err
	}

	url := fmt.Sprintf("%s/%s/add-object", a.baseURL, a.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.BookingRecord{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("cosmic.bookings.create_failed", out.LogFields{
			"error": err.Error(),
		})
		return domain.BookingRecord{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		a.logger.Error("cosmic.bookings.create_failed", out.LogFields{
			"status": resp.StatusCode,
		})
		return domain.BookingRecord{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var created objectResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		a.logger.Error("cosmic.bookings.decode_failed", out.LogFields{
			"error": err.Error(),
		})
		return domain.BookingRecord{}, err
	}

	record.ID = created.Object.ID

	a.logger.Debug("cosmic.bookings.create_success", out.LogFields{
		"bookingId": record.ID,
	})

	return record, nil
}

func (a *CosmicAdapter) DeleteBooking(ctx context.Context, id string) error {
	a.logger.Info("cosmic.bookings.delete", out.LogFields{
		"bookingId": id,
	})

	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(deleteObjectRequest{WriteKey: a.writeKey})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/%s", a.baseURL, a.bucket, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("cosmic.bookings.delete_failed", out.LogFields{
			"bookingId": id,
			"error":     err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		a.logger.Error("cosmic.bookings.delete_failed", out.LogFields{
			"bookingId": id,
			"status":    resp.StatusCode,
		})
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

func (a *CosmicAdapter) GetSiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	a.logger.Info("cosmic.site_config.fetch", out.LogFields{})

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/object/%s", a.baseURL, a.bucket, a.configSlug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	query := nurl.Values{}
	query.Add("read_key", a.readKey)
	req.URL.RawQuery = query.Encode()

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("cosmic.site_config.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("cosmic.site_config.fetch_failed", out.LogFields{
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var cfgResponse configObjectResponse
	if err := json.NewDecoder(resp.Body).Decode(&cfgResponse); err != nil {
		a.logger.Error("cosmic.site_config.decode_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	metadata := cfgResponse.Object.Metadata
	return &domain.SiteConfig{
		SiteTitle:  metadata.SiteTitle,
		AboutURL:   metadata.AboutURL,
		ContactURL: metadata.ContactURL,
		HomeURL:    metadata.HomeURL,
	}, nil
}
