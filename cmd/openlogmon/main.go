package main

import (
	"flag"
	"log"
	"strings"

	"github.com/robotalks/openlog.go/pkg/comm"
	"github.com/robotalks/openlog.go/pkg/comm/mqtt"
	"github.com/robotalks/openlog.go/pkg/env"
	fx "github.com/robotalks/openlog.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(env.Default().MQTTBrokerURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/"+mqtt.TopicMeta):
			log.Printf("%s: %s", topic, string(payload))
		case strings.HasSuffix(topic, "/"+mqtt.TopicRequest):
			req, err := comm.DecodeRequest(payload)
			if err != nil {
				log.Printf("%s: bad request: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, req.String())
		case strings.HasSuffix(topic, "/"+mqtt.TopicReply):
			reply, err := comm.DecodeReply(payload)
			if err != nil {
				log.Printf("%s: bad reply: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, reply.String())
		}
	}))

	runner := fx.NewRunner().HandleSignals()
	if err := q.ConnectAndWait(runner.Context); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()
	<-runner.Context.Done()
}
