package main

import (
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	parleycli "github.com/parley-chat/parley-go-chat/parley-cli"
	parleyddb "github.com/parley-chat/parley-go-chat/parley-ddb"
	parleyws "github.com/parley-chat/parley-go-chat/parley-ws"
	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
	"github.com/parley-chat/parley-go-chat/parley-ws/connectiondao"
	"github.com/parley-chat/parley-go-chat/parley-ws/localserver"
	"github.com/parley-chat/parley-go-chat/parley-ws/memberdao"
	"github.com/parley-chat/parley-go-chat/parley-ws/messagedao"
	"github.com/urfave/cli/v2"
)

var service = parleycli.NewService("parley-ws")

var opts struct {
	WSEndpoint string
}

func main() {
	app := parleycli.App(
		service,
		action,
		append(
			slices.Concat(
				parleycli.CommonFlags,
				parleyddb.DDBFlags,
			),
			parleycli.PortFlag(8080),
			parleycli.StringFlag("ws-endpoint", "The API Gateway management endpoint, overriding the request-derived default", &opts.WSEndpoint),
		)...,
	)
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func action(c *cli.Context) error {
	logger := parleycli.Logger(service)

	s := session.Must(session.NewSession(aws.NewConfig()))
	api, err := parleyddb.DynamoDBAPI(s)
	if err != nil {
		return fmt.Errorf("failed to build dynamodb client: %w", err)
	}

	tableName := parleyddb.DDBOpts.TableName
	if tableName == "" {
		tableName = chatkey.TableName(parleycli.CommonOpts.Env)
	}

	handler := &parleyws.Handler{
		Connections: connectiondao.New(api, tableName),
		Members:     memberdao.New(api, tableName),
		Messages:    messagedao.New(api, tableName),
		Logger:      logger,
		Endpoint:    opts.WSEndpoint,
	}

	if parleycli.CommonOpts.Console {
		hub := localserver.NewHub()
		handler.Poster = hub
		handler.Broadcast = &parleyws.Broadcaster{Poster: hub, Logger: logger}
		return localserver.New(handler, hub, logger).ListenAndServe(parleycli.CommonOpts.Port)
	}

	poster := parleyws.NewManagementPoster()
	metrics := parleycli.NewMetrics(service, cloudwatch.New(s))
	handler.Poster = poster
	handler.Broadcast = &parleyws.Broadcaster{Poster: poster, Logger: logger, Metrics: &metrics}
	handler.Metrics = &metrics

	lambda.Start(handler.HandleEvent)
	return nil
}
