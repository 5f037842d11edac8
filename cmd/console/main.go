package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/lkscloud/order-console/internal/activity"
	"github.com/lkscloud/order-console/internal/apiclient"
	"github.com/lkscloud/order-console/internal/config"
	"github.com/lkscloud/order-console/internal/handlers"
	"github.com/lkscloud/order-console/internal/metrics"
)

func setupRouter(console *handlers.Console) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	console.Register(r)

	return r
}

func main() {
	store := config.NewStore("")
	settings, err := store.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	feed := activity.NewFeed(activity.DefaultLimit)
	sink := apiclient.MultiSink{feed}

	// CloudWatch publishing is opt-in; the console runs fine without AWS
	// credentials.
	if os.Getenv("CLOUDWATCH_METRICS") == "true" {
		cw, err := metrics.NewClient(context.Background(), settings.Region)
		if err != nil {
			log.Printf("cloudwatch disabled: %v", err)
		} else {
			sink = append(sink, metrics.NewPublisher(cw, metrics.Namespace))
		}
	}

	console := handlers.NewConsole(handlers.ConsoleConfig{
		Store: store,
		Feed:  feed,
		Sink:  sink,
	}, settings)

	r := setupRouter(console)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
