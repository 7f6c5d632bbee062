package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v6"
	"github.com/endpointops/android-app-importer/src/entity/clientmodule"
	"github.com/endpointops/android-app-importer/src/entity/logger"
	"github.com/endpointops/android-app-importer/src/entity/policy"
	"github.com/endpointops/android-app-importer/src/metrics"
	"github.com/endpointops/android-app-importer/src/repository/app_repository"
	"github.com/endpointops/android-app-importer/src/repository/history_repository"
	"github.com/endpointops/android-app-importer/src/repository/import_event_repository"
	"github.com/endpointops/android-app-importer/src/repository/module_repository"
	"github.com/endpointops/android-app-importer/src/repository/record_repository"
	"github.com/endpointops/android-app-importer/src/repository/session_repository"
	"github.com/endpointops/android-app-importer/src/use_case"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.uber.org/zap"
)

type config struct {
	AppName              string `env:"APP_NAME" envDefault:"android-app-importer"`
	AppVersion           string `env:"APP_VERSION"`
	Environment          string `env:"ENVIRONMENT" envDefault:"development"`
	Debuglog             bool   `env:"DEBUG_LOG" envDefault:"false"`
	JaegerEndpoint       string `env:"JAEGER_ENDPOINT" envDefault:"http://localhost:14268/api/traces"`
	LogPath              string `env:"LOG_PATH"`
	CSVLocation          string `env:"CSV_LOCATION"`
	ClientModule         string `env:"CLIENT_MODULE"`
	CSVDelimiter         string `env:"CSV_DELIMITER" envDefault:";"`
	MaxAgeLogFiles       uint   `env:"MAX_AGE_LOG_FILES" envDefault:"30"`
	ImportFailurePolicy  string `env:"IMPORT_FAILURE_POLICY" envDefault:"fatal"`
	ConnectFailurePolicy string `env:"CONNECT_FAILURE_POLICY" envDefault:"fatal"`
	HealthcheckPort      uint   `env:"HEALTHCHECK_PORT" envDefault:"0"`
	MongoDbUri           string `env:"MONGO_DB_URI"`
	MongoDbHistory       string `env:"MONGO_DB_HISTORY" envDefault:"app-import"`
	KafkaServer          string `env:"KAFKA_SERVER"`
	KafkaTopicImport     string `env:"KAFKA_TOPIC_IMPORT_EVENT"`
}

func main() {
	cfg := initEnvironment()
	logCfg := logger.Config{
		BasePath:     cfg.LogPath,
		RunTimestamp: time.Now(),
		Debug:        cfg.Debuglog,
	}
	initLogger(logCfg)
	initTracer(cfg)

	runFile := logCfg.RunFilePath()
	logger.Sweep(filepath.Dir(runFile), time.Duration(cfg.MaxAgeLogFiles)*24*time.Hour, filepath.Base(runFile))

	// Nothing can run without the client module, so a load failure ends the
	// process here, before import or connect are attempted.
	module := loadClientModule(cfg)

	recordRepo, sessionRepo, appRepo, historyRepo, importEventRepo := initRepositories(cfg, module)
	useCase := use_case.New(recordRepo, sessionRepo, appRepo, historyRepo, importEventRepo, initPolicies(cfg))

	if cfg.HealthcheckPort > 0 {
		go metrics.Serve(cfg.HealthcheckPort)
	}

	ctx := context.Background()
	err := useCase.ImportApplications(ctx, cfg.CSVLocation, delimiterRune(cfg))
	tp := otel.GetTracerProvider()
	tp.(*trace.TracerProvider).ForceFlush(ctx)
	if err != nil {
		zap.L().Fatal("import run failed", zap.Any("error", err))
	}
}

func initEnvironment() config {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))

	err := godotenv.Load()
	if err != nil {
		log.Printf("Error loading .env file: %s\n", err)
	}

	var cfg config
	err = env.Parse(&cfg)
	if err != nil {
		log.Fatalf("Error parse env: %s\n", err)
	}

	// CLI parameters override the environment.
	logPath := flag.String("log-path", "", "Target log file; the run timestamp is inserted before the extension.")
	csvLocation := flag.String("csv", "", "Input delimited-file path.")
	clientModule := flag.String("module", "", "Path to the management API client module manifest.")
	delimiter := flag.String("delimiter", "", "Field separator for the input file.")
	flag.Parse()

	if len(*logPath) > 0 {
		cfg.LogPath = *logPath
	}
	if len(*csvLocation) > 0 {
		cfg.CSVLocation = *csvLocation
	}
	if len(*clientModule) > 0 {
		cfg.ClientModule = *clientModule
	}
	if len(*delimiter) > 0 {
		cfg.CSVDelimiter = *delimiter
	}

	if len(cfg.LogPath) <= 0 {
		cfg.LogPath = filepath.Join(os.TempDir(), "CustomScripts", "Add-AndroidApps.txt")
	}
	if len(cfg.CSVLocation) <= 0 {
		log.Fatalf("CSV_LOCATION (or -csv) is required\n")
	}
	if len(cfg.ClientModule) <= 0 {
		log.Fatalf("CLIENT_MODULE (or -module) is required\n")
	}
	if utf8.RuneCountInString(cfg.CSVDelimiter) != 1 {
		log.Fatalf("CSV_DELIMITER must be a single character, got %q\n", cfg.CSVDelimiter)
	}

	return cfg
}

func initLogger(cfg logger.Config) {
	if err := logger.Init(cfg); err != nil {
		log.Fatalf("Error build logger: %s\n", err)
	}
}

func initTracer(cfg config) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
	if err != nil {
		zap.L().Fatal("Error init Jaeger exporter: ", zap.Error(err))
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.AppName),
			semconv.ServiceVersionKey.String(cfg.AppVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		zap.L().Fatal("Error init Jaeger resource: ", zap.Error(err))
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(r),
	)

	otel.SetTracerProvider(tp)
}

func loadClientModule(cfg config) clientmodule.Module {
	moduleRepo := module_repository.NewFile()

	module, err := moduleRepo.Load(context.Background(), cfg.ClientModule)
	if err != nil {
		zap.L().Fatal("Error loading client module: ", zap.Error(err))
	}
	return module
}

func initRepositories(cfg config, module clientmodule.Module) (
	use_case.RecordRepository,
	use_case.SessionRepository,
	use_case.AppRepository,
	use_case.HistoryRepository,
	use_case.ImportEventRepository,
) {
	recordRepo := record_repository.NewFile()
	sessionRepo := session_repository.NewRest(module, cfg.ClientModule+".tokencache")
	appRepo := app_repository.NewRest(module.BaseURL)

	historyRepo := history_repository.NewNoop()
	if len(cfg.MongoDbUri) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDbUri))
		if err != nil {
			zap.L().Fatal("Error init mongo client: ", zap.Error(err))
		}

		err = client.Ping(ctx, readpref.Primary())
		if err != nil {
			zap.L().Fatal("Error ping mongo client: ", zap.Error(err))
		}

		historyRepo = history_repository.NewMongoDb(client.Database(cfg.MongoDbHistory))
	}

	importEventRepo := import_event_repository.NewNoop()
	if len(cfg.KafkaServer) > 0 {
		importEventRepo = import_event_repository.NewKafkaMQ(cfg.KafkaServer, cfg.KafkaTopicImport)
	}

	return recordRepo, sessionRepo, appRepo, historyRepo, importEventRepo
}

func initPolicies(cfg config) use_case.Policies {
	importPolicy, err := policy.ParseFailurePolicy(cfg.ImportFailurePolicy)
	if err != nil {
		zap.L().Fatal("Error parse import failure policy: ", zap.Error(err))
	}
	connectPolicy, err := policy.ParseFailurePolicy(cfg.ConnectFailurePolicy)
	if err != nil {
		zap.L().Fatal("Error parse connect failure policy: ", zap.Error(err))
	}
	return use_case.Policies{
		Import:  importPolicy,
		Connect: connectPolicy,
	}
}

func delimiterRune(cfg config) rune {
	r, _ := utf8.DecodeRuneInString(cfg.CSVDelimiter)
	return r
}
