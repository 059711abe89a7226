package session

import (
	"context"
	"io"

	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/form"
)

// Locator reads the device position.
type Locator interface {
	Locate(ctx context.Context) (fields.Geolocation, error)
}

// WeatherProvider reports current conditions at a position.
type WeatherProvider interface {
	Current(ctx context.Context, at fields.Geolocation) (fields.Weather, error)
}

// Uploader stores a photo and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, name string, content io.Reader) (string, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (fields.Geolocation, error)

func (fn LocatorFunc) Locate(ctx context.Context) (fields.Geolocation, error) { return fn(ctx) }

// WeatherFunc adapts a function to WeatherProvider.
type WeatherFunc func(ctx context.Context, at fields.Geolocation) (fields.Weather, error)

func (fn WeatherFunc) Current(ctx context.Context, at fields.Geolocation) (fields.Weather, error) {
	return fn(ctx, at)
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(ctx context.Context, name string, content io.Reader) (string, error)

func (fn UploaderFunc) Upload(ctx context.Context, name string, content io.Reader) (string, error) {
	return fn(ctx, name, content)
}

const (
	deviceGeolocation = "geolocation"
	deviceWeather     = "weather"
	devicePhoto       = "photo"
)

// CaptureLocation fills a geolocation item from the Locator. On failure the
// item stays unfilled and the error is recorded in FieldErrors.
func (s *Session) CaptureLocation(ctx context.Context, sectionID, itemID string) error {
	return s.capture(ctx, sectionID, itemID, form.ItemTypeGeolocation, deviceGeolocation, func(ctx context.Context) (any, error) {
		if s.cfg.Locator == nil {
			return nil, ErrNoDevice
		}
		return s.cfg.Locator.Locate(ctx)
	})
}

// CaptureWeather fills a weather item with the conditions at the device
// position.
func (s *Session) CaptureWeather(ctx context.Context, sectionID, itemID string) error {
	return s.capture(ctx, sectionID, itemID, form.ItemTypeWeather, deviceWeather, func(ctx context.Context) (any, error) {
		if s.cfg.Locator == nil || s.cfg.Weather == nil {
			return nil, ErrNoDevice
		}
		at, err := s.cfg.Locator.Locate(ctx)
		if err != nil {
			return nil, err
		}
		return s.cfg.Weather.Current(ctx, at)
	})
}

// AttachPhoto uploads content and stores the resulting URL in a photo item.
func (s *Session) AttachPhoto(ctx context.Context, sectionID, itemID, name string, content io.Reader) error {
	return s.capture(ctx, sectionID, itemID, form.ItemTypePhoto, devicePhoto, func(ctx context.Context) (any, error) {
		if s.cfg.Uploader == nil {
			return nil, ErrNoDevice
		}
		return s.cfg.Uploader.Upload(ctx, name, content)
	})
}

// capture runs read without holding s.mu, so a slow device never stalls
// timers or other fields.
func (s *Session) capture(ctx context.Context, sectionID, itemID string, want form.ItemType, device string, read func(context.Context) (any, error)) error {
	key := slot{sectionID, itemID}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	item, err := s.item(sectionID, itemID)
	if err == nil && item.Type != want {
		err = ErrWrongItemType
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	value, err := read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err == nil {
		err = s.set(key, value)
	}
	if err != nil {
		captureErr := &DeviceCaptureError{SectionID: sectionID, ItemID: itemID, Device: device, Err: err}
		s.fieldErrors[key] = captureErr
		s.opts.logger.Warn("device capture failed", "session", s.id, "device", device, "section", sectionID, "item", itemID, "err", err)
		return captureErr
	}
	return nil
}
