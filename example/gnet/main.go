package main

import (
	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/chanlog"
	"github.com/lixenwraith/chanlog/compat"
)

const chanNet = 4

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	logger, err := chanlog.NewBuilder().
		LevelString("debug").
		Format("json").
		Output(chanlog.NewFileSink("/var/log/gnet/gnet.log"), chanlog.LevelDebug, chanNet).
		Output(chanlog.NewConsoleSink("stderr", true), chanlog.LevelWarning, chanNet).
		Build()
	if err != nil {
		panic(err)
	}
	if err := logger.Start(); err != nil {
		panic(err)
	}
	defer logger.Stop()

	gnetAdapter := compat.NewGnetAdapter(logger, compat.WithGnetChannel(chanNet))

	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
