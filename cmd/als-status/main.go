package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	grpcAdapter "github.com/quentinrf/ambient-backlight/internal/adapters/grpc"
	"github.com/quentinrf/ambient-backlight/internal/adapters/terminal"
	"github.com/quentinrf/ambient-backlight/internal/config"
	"github.com/quentinrf/ambient-backlight/internal/service"
)

func main() {
	ambient, err := config.LoadAmbient()
	service.InitLogger(ambient.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("bad environment")
	}

	addr := flag.String("addr", "localhost:50051", "status service address")
	history := flag.Duration("history", 0, "print samples from this far back instead of the latest one")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	creds := insecure.NewCredentials()
	if ambient.TLS.Enabled() {
		tlsCfg, err := ambient.TLS.Client()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load TLS config")
		}
		creds = credentials.NewTLS(tlsCfg)
	}

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("failed to dial")
	}
	defer conn.Close()

	client := grpcAdapter.NewStatusClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *history <= 0 {
		sample, err := client.GetCurrentSample(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("GetCurrentSample failed")
		}
		fmt.Println(terminal.Format(sample))
		return
	}

	now := time.Now()
	h, err := client.GetHistory(ctx, now.Add(-*history), now.Add(time.Second))
	if err != nil {
		log.Fatal().Err(err).Msg("GetHistory failed")
	}
	for _, s := range h.Samples {
		fmt.Printf("%s %s\n", s.Timestamp.Local().Format(time.TimeOnly), terminal.Format(s))
	}
	fmt.Printf("%d samples, level avg %.1f min %d max %d\n", len(h.Samples), h.AverageLevel, h.MinLevel, h.MaxLevel)
}
