//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/moodfit/internal/bootstrap"
	"github.com/yanqian/moodfit/internal/domain/capture"
	"github.com/yanqian/moodfit/internal/domain/inference"
	"github.com/yanqian/moodfit/internal/domain/recommendation"
	"github.com/yanqian/moodfit/internal/domain/weather"
	"github.com/yanqian/moodfit/internal/domain/wizard"
	"github.com/yanqian/moodfit/internal/infra/classifier"
	"github.com/yanqian/moodfit/internal/infra/config"
	httpiface "github.com/yanqian/moodfit/internal/interface/http"
	"github.com/yanqian/moodfit/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideOutboundClient,
		provideInferenceConfig,
		provideClassifier,
		provideCaptureManager,
		provideWeatherConfig,
		provideForecastClient,
		provideAirQualityClient,
		provideWeatherCache,
		provideCatalog,
		provideResolver,
		provideAssetLinker,
		provideBroadcaster,
		provideWizardConfig,
		inference.NewStage,
		weather.NewService,
		wizard.NewController,
		wire.Bind(new(inference.Loader), new(*classifier.Client)),
		wire.Bind(new(wizard.Inferencer), new(*inference.Stage)),
		wire.Bind(new(wizard.Capturer), new(*capture.Manager)),
		wire.Bind(new(wizard.Resolver), new(*recommendation.Resolver)),
		wire.Bind(new(wizard.Service), new(*wizard.Controller)),
		wire.Bind(new(httpiface.ModelReporter), new(*inference.Stage)),
		wire.Bind(new(bootstrap.ModelLoader), new(*inference.Stage)),
		wire.Bind(new(bootstrap.Closer), new(*wizard.Controller)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
