package app_repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/endpointops/android-app-importer/src/entity/application"
	"github.com/endpointops/android-app-importer/src/entity/icon"
	"github.com/endpointops/android-app-importer/src/entity/logger"
	"github.com/endpointops/android-app-importer/src/entity/session"
	"github.com/endpointops/android-app-importer/src/use_case"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("app_repository")

type rest struct {
	client  *http.Client
	baseURL string
}

type restAndroidStoreApp struct {
	ODataType      string           `json:"@odata.type"`
	DisplayName    string           `json:"displayName"`
	Publisher      string           `json:"publisher"`
	Description    string           `json:"description"`
	AppStoreURL    string           `json:"appStoreUrl"`
	MinimumOS      map[string]bool  `json:"minimumSupportedOperatingSystem,omitempty"`
	LargeIcon      *restMimeContent `json:"largeIcon,omitempty"`
	IsFeatured     bool             `json:"isFeatured"`
	InformationURL string           `json:"informationUrl,omitempty"`
	PrivacyInfoURL string           `json:"privacyInformationUrl,omitempty"`
}

type restMimeContent struct {
	ODataType string `json:"@odata.type"`
	Type      string `json:"type"`
	Value     []byte `json:"value"`
}

func newRestAndroidStoreApp(record application.Record, ic icon.Icon) restAndroidStoreApp {
	app := restAndroidStoreApp{
		ODataType:   "#microsoft.graph.androidStoreApp",
		DisplayName: record.Name,
		Publisher:   record.Publisher,
		Description: record.Description,
		AppStoreURL: record.URL,
		LargeIcon: &restMimeContent{
			ODataType: "#microsoft.graph.mimeContent",
			Type:      ic.MimeType,
			Value:     ic.Data,
		},
	}

	// One-of-N selector on the wire: exactly one version flag set.
	if record.MinimumAndroidVersion != application.AndroidVersionNone {
		app.MinimumOS = map[string]bool{
			record.MinimumAndroidVersion.FlagName(): true,
		}
	}
	return app
}

func (r rest) CreateAndroidStoreApp(ctx context.Context, s session.Session, record application.Record, ic icon.Icon) error {
	ctx, span := tracer.Start(ctx, "app_repository.CreateAndroidStoreApp")
	defer span.End()

	payload, err := json.Marshal(newRestAndroidStoreApp(record, ic))
	if err != nil {
		zap.L().Error("marshal app failed", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("marshal app failed: %s", err))
		return fmt.Errorf("%s: %w", record.Name, use_case.ErrCreatingApplication)
	}

	endpoint := fmt.Sprintf("%s/deviceAppManagement/mobileApps", r.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		zap.L().Error("create request failed", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("create request failed: %s", err))
		return fmt.Errorf("%s: %w", record.Name, use_case.ErrCreatingApplication)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("%s %s", s.TokenType, s.AccessToken))

	res, err := r.client.Do(req)
	if err != nil {
		zap.L().Error("execute request failed", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("execute request failed: %s", err))
		return fmt.Errorf("%s: %w", record.Name, use_case.ErrCreatingApplication)
	}

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		zap.L().Error("io read failed", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("io read failed: %s", err))
		return fmt.Errorf("%s: %w", record.Name, use_case.ErrCreatingApplication)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		zap.L().Error("create application rejected",
			logger.WithTraceId(ctx),
			zap.Any("status", res.StatusCode),
			zap.Any("body", string(data)),
		)
		span.SetStatus(codes.Error, fmt.Sprintf("create application returned %d", res.StatusCode))
		return fmt.Errorf("%s: status %d: %w", record.Name, res.StatusCode, use_case.ErrCreatingApplication)
	}

	return nil
}

func (r rest) HealthCheck(ctx context.Context) error {
	return nil
}

func NewRest(baseURL string) use_case.AppRepository {
	c := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  true,
			MaxIdleConnsPerHost: 10,
		},
	}

	r := &rest{
		client:  c,
		baseURL: baseURL,
	}
	return r
}
