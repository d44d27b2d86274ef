package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ruteri/celia-media/api/clients"
	"github.com/ruteri/celia-media/cmd/flags"
	"github.com/urfave/cli/v2"
)

var flagTenant = &cli.StringFlag{
	Name:     "tenant",
	Required: true,
	Usage:    "tenant (config name) to request from",
}
var flagKey = &cli.StringFlag{
	Name:     "key",
	Required: true,
	Usage:    "object key",
}
var flagOutput = &cli.StringFlag{
	Name:  "output",
	Value: "-",
	Usage: "file to write the object to, - for stdout",
}

func newClient(cCtx *cli.Context) *clients.GatewayClient {
	return &clients.GatewayClient{ServerAddr: cCtx.String(flags.ServerAddrFlag.Name)}
}

func main() {
	app := &cli.App{
		Name:  "gateway-client",
		Usage: "Request objects from a celia-media gateway",
		Flags: []cli.Flag{flags.ServerAddrFlag},
		Commands: []*cli.Command{
			{
				Name:  "resolve",
				Usage: "Print the presigned URL a redirect-mode tenant answers with",
				Flags: []cli.Flag{flagTenant, flagKey},
				Action: func(cCtx *cli.Context) error {
					url, err := newClient(cCtx).Resolve(cCtx.String(flagTenant.Name), cCtx.String(flagKey.Name))
					if err != nil {
						return err
					}
					fmt.Println(url)
					return nil
				},
			},
			{
				Name:  "fetch",
				Usage: "Download an object, following redirects",
				Flags: []cli.Flag{flagTenant, flagKey, flagOutput},
				Action: func(cCtx *cli.Context) (err error) {
					var w io.Writer = os.Stdout
					if path := cCtx.String(flagOutput.Name); path != "-" {
						f, createErr := os.Create(path)
						if createErr != nil {
							return createErr
						}
						defer func() {
							err = errors.Join(err, f.Close())
						}()
						w = f
					}

					n, err := newClient(cCtx).Fetch(cCtx.String(flagTenant.Name), cCtx.String(flagKey.Name), w)
					if err != nil {
						return err
					}
					fmt.Fprintf(os.Stderr, "%d bytes\n", n)
					return nil
				},
			},
			{
				Name:  "tenants",
				Usage: "List the tenants the gateway serves",
				Action: func(cCtx *cli.Context) error {
					tenants, err := newClient(cCtx).Tenants()
					if err != nil {
						return err
					}
					for _, t := range tenants {
						fmt.Printf("%s\t%s\n", t.Name, t.Mode)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
