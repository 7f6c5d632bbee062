package module_repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/endpointops/android-app-importer/src/entity/clientmodule"
	"github.com/endpointops/android-app-importer/src/entity/logger"
	"github.com/endpointops/android-app-importer/src/entity/platform"
	"github.com/endpointops/android-app-importer/src/use_case"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("module_repository")

type file struct{}

type fileModule struct {
	TokenEndpoint string `json:"token_endpoint"`
	BaseURL       string `json:"base_url"`
	TenantID      string `json:"tenant_id"`
	ClientID      string `json:"client_id"`
	ClientSecret  string `json:"client_secret"`
	Scope         string `json:"scope"`
	Platform      string `json:"platform"`
}

func (m fileModule) ToEntity() (clientmodule.Module, error) {
	platformType, err := platform.ParsePlatformType(m.Platform)
	if err != nil {
		return clientmodule.Module{}, err
	}

	module := clientmodule.Module{
		TokenEndpoint: m.TokenEndpoint,
		BaseURL:       m.BaseURL,
		TenantID:      m.TenantID,
		ClientID:      m.ClientID,
		ClientSecret:  m.ClientSecret,
		Scope:         m.Scope,
		Platform:      platformType,
	}
	if err := module.Validate(); err != nil {
		return clientmodule.Module{}, err
	}
	return module, nil
}

func (f file) Load(ctx context.Context, path string) (clientmodule.Module, error) {
	ctx, span := tracer.Start(ctx, "module_repository.Load")
	defer span.End()

	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Error("read client module failed", logger.WithTraceId(ctx), zap.Any("error", err), zap.Any("path", path))
		span.SetStatus(codes.Error, fmt.Sprintf("read client module failed: %s", err))
		return clientmodule.Module{}, fmt.Errorf("%s: %w", path, use_case.ErrLoadingModule)
	}

	var o fileModule
	if err := json.Unmarshal(data, &o); err != nil {
		zap.L().Error("unmarshal client module failed", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("unmarshal client module failed: %s", err))
		return clientmodule.Module{}, fmt.Errorf("%s: %w", path, use_case.ErrLoadingModule)
	}

	module, err := o.ToEntity()
	if err != nil {
		zap.L().Error("invalid client module", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("invalid client module: %s", err))
		return clientmodule.Module{}, fmt.Errorf("%s: %w", err, use_case.ErrLoadingModule)
	}

	zap.L().Info("client module loaded",
		logger.WithTraceId(ctx),
		zap.Any("fingerprint", module.Fingerprint()),
	)
	return module, nil
}

func NewFile() use_case.ModuleRepository {
	return file{}
}
