package main

import (
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/go-chi/chi/v5"
	parleycli "github.com/parley-chat/parley-go-chat/parley-cli"
	parleyddb "github.com/parley-chat/parley-go-chat/parley-ddb"
	parleyrest "github.com/parley-chat/parley-go-chat/parley-rest"
	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
	"github.com/parley-chat/parley-go-chat/parley-ws/messagedao"
	cliv2 "github.com/urfave/cli/v2"
)

var service = parleycli.NewService("parley-rest")

func main() {
	app := parleycli.App(
		service,
		action,
		append(
			slices.Concat(
				parleycli.CommonFlags,
				parleyddb.DDBFlags,
			),
			parleycli.PortFlag(8081),
		)...,
	)
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func action(c *cliv2.Context) error {
	s := session.Must(session.NewSession(aws.NewConfig()))
	api, err := parleyddb.DynamoDBAPI(s)
	if err != nil {
		return fmt.Errorf("failed to build dynamodb client: %w", err)
	}

	tableName := parleyddb.DDBOpts.TableName
	if tableName == "" {
		tableName = chatkey.TableName(parleycli.CommonOpts.Env)
	}
	messages := messagedao.New(api, tableName)

	routes := chi.NewRouter()
	parleyrest.Middlewares(service, routes)
	routes.Get("/rooms/{roomID}/messages", parleyrest.HistoryHandler(messages))

	return parleyrest.Webserver(service, routes)
}
