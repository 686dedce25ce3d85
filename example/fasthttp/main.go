package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/chanlog"
	"github.com/lixenwraith/chanlog/compat"
)

const chanHTTP = 5

func main() {
	logger, err := chanlog.NewBuilder().
		LevelString("info").
		QueueCapacity(2048).
		Output(chanlog.NewFileSink("/var/log/fasthttp/server.log"), chanlog.LevelInfo, chanHTTP).
		Output(chanlog.NewConsoleSink("stdout", true), chanlog.LevelWarning, chanHTTP).
		Build()
	if err != nil {
		panic(err)
	}
	if err := logger.Start(); err != nil {
		panic(err)
	}
	defer logger.Stop()

	fasthttpAdapter, err := compat.NewBuilder().
		WithLogger(logger).
		WithChannel(chanHTTP).
		BuildFastHTTP(
			compat.WithDefaultLevel(chanlog.LevelInfo),
			compat.WithLevelDetector(customLevelDetector),
		)
	if err != nil {
		panic(err)
	}

	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

func customLevelDetector(msg string) (chanlog.Level, bool) {
	if strings.Contains(msg, "connection cannot be served") {
		return chanlog.LevelWarning, true
	}
	if strings.Contains(msg, "error when serving connection") {
		return chanlog.LevelError, true
	}
	return compat.DetectLogLevel(msg)
}
