package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/openlog.go/pkg/env"
	fx "github.com/robotalks/openlog.go/pkg/framework"
	"github.com/robotalks/openlog.go/pkg/openlog"
)

func init() {
	env.SetupFlags()
	env.SetupBridgeFlags()
}

func main() {
	flag.Parse()

	runner := fx.NewRunner().HandleSignals()
	conf := env.NewConfig()
	b := conf.MustOpenBus(runner.Context)

	session := openlog.NewSession(b)
	session.WriteDelay = conf.WriteDelay
	if ready, err := session.CheckReady(runner.Context, conf.Addr); err != nil {
		glog.Warningf("logger at %s not reachable: %v", conf.Addr, err)
	} else {
		glog.Infof("logger at %s: %s", conf.Addr, session.Status())
		if ready {
			if major, minor, err := session.FirmwareVersion(runner.Context, conf.Addr); err == nil {
				glog.Infof("firmware %d.%d", major, minor)
			}
		}
	}

	bridge := env.NewBridgeConfig()
	bridge.Info.Meta.Bus = conf.BusURL
	bridge.Info.Meta.Addrs = []string{conf.Addr.String()}
	if bridge.Info.Meta.Description == "" {
		bridge.Info.Meta.Description = fmt.Sprintf("OpenLog bridge on %s", conf.BusURL)
	}
	runner.Go(bridge.MustNewBridges(b)...).WaitOrFail()
}
