// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Command h5restctl is a thin demonstration entry point for the
// object-service client: it drives the codec/dispatch packages
// against either a real object-service endpoint or, via "serve", the
// in-process mock implementation used by this module's own tests.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/HDFGroup/vol-rest-go/dcpl"
	"github.com/HDFGroup/vol-rest-go/dispatch"
	"github.com/HDFGroup/vol-rest-go/handle"
	"github.com/HDFGroup/vol-rest-go/hspace"
	"github.com/HDFGroup/vol-rest-go/htype"
	"github.com/HDFGroup/vol-rest-go/locator"
	"github.com/HDFGroup/vol-rest-go/mockserver"
	"github.com/HDFGroup/vol-rest-go/reqbuild"
)

func main() {
	app := cli.NewApp()
	app.Name = "h5restctl"
	app.Usage = "exercise a hierarchical object-service endpoint"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "endpoint", Usage: "base URL of the object service"},
		cli.StringFlag{Name: "filepath", Usage: "file path identifying the target file to the object service"},
		cli.StringFlag{Name: "config", Usage: "YAML file supplying endpoint/filepath defaults"},
	}
	app.Commands = []cli.Command{
		serveCommand,
		groupCommand,
		datasetCommand,
		locateCommand,
		demoCommand,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Error("h5restctl failed")
		os.Exit(1)
	}
}

var serveCommand = cli.Command{
	Name:  "serve",
	Usage: "run the in-process mock object service",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "bind", Value: ":8888", Usage: "[ip]:port to listen on"},
	},
	Action: func(c *cli.Context) error {
		srv := mockserver.New(logrus.StandardLogger())
		logrus.WithField("bind", c.String("bind")).Info("serving mock object service")
		return http.ListenAndServe(c.String("bind"), srv.Handler())
	},
}

var groupCommand = cli.Command{
	Name:  "group",
	Usage: "manage groups",
	Subcommands: []cli.Command{
		{
			Name:      "create",
			Usage:     "create a group",
			ArgsUsage: "PATH",
			Action: func(c *cli.Context) error {
				path := c.Args().First()
				if path == "" {
					return cli.NewExitError("group create requires a PATH argument", 1)
				}
				tr, file, err := connect(c)
				if err != nil {
					return err
				}
				defer tr.Teardown()

				link, err := reqbuild.ResolveLink(tr, file, path)
				if err != nil {
					return err
				}
				body := map[string]interface{}{}
				if link != nil {
					body["link"] = map[string]interface{}{"id": link.ParentURI, "name": link.Name}
				}
				target, err := tr.Template("groups", nil)
				if err != nil {
					return err
				}
				var resp map[string]interface{}
				if err := tr.Post(target, body, &resp); err != nil {
					return err
				}
				fmt.Printf("created group %s -> %v\n", path, resp["id"])
				return nil
			},
		},
	},
}

var datasetCommand = cli.Command{
	Name:  "dataset",
	Usage: "manage datasets",
	Subcommands: []cli.Command{
		{
			Name:      "create",
			Usage:     "create a fixed-size integer dataset",
			ArgsUsage: "PATH DIM[,DIM...]",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "layout", Value: "H5D_CONTIGUOUS", Usage: "H5D_CONTIGUOUS, H5D_COMPACT, or H5D_CHUNKED"},
				cli.StringFlag{Name: "chunk-dims", Usage: "comma-separated chunk dimensions, required when layout is H5D_CHUNKED"},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					return cli.NewExitError("dataset create requires PATH and DIM[,DIM...]", 1)
				}
				path := c.Args().Get(0)
				dims, err := parseDims(c.Args().Get(1))
				if err != nil {
					return err
				}

				options := map[string]interface{}{"layout": c.String("layout")}
				if chunks := c.String("chunk-dims"); chunks != "" {
					chunkDims, err := parseDims(chunks)
					if err != nil {
						return err
					}
					intDims := make([]int, len(chunkDims))
					for i, d := range chunkDims {
						intDims[i] = int(d)
					}
					options["chunkDims"] = intDims
				}
				props, err := dcpl.FromOptions(options)
				if err != nil {
					return err
				}

				tr, file, err := connect(c)
				if err != nil {
					return err
				}
				defer tr.Teardown()

				link, err := reqbuild.ResolveLink(tr, file, path)
				if err != nil {
					return err
				}
				space, err := hspace.NewSimple(dims, nil)
				if err != nil {
					return err
				}
				body, err := reqbuild.DatasetRequest(htype.NewInteger(4, true, true), space, props, link, htype.DefaultMaxDepth)
				if err != nil {
					return err
				}
				target, err := tr.Template("datasets", nil)
				if err != nil {
					return err
				}
				var resp map[string]interface{}
				if err := tr.Post(target, body, &resp); err != nil {
					return err
				}
				fmt.Printf("created dataset %s -> %v\n", path, resp["id"])
				return nil
			},
		},
		{
			Name:      "read",
			Usage:     "read a dataset's entire value as signed 32-bit little-endian integers",
			ArgsUsage: "PATH",
			Action: func(c *cli.Context) error {
				path := c.Args().First()
				if path == "" {
					return cli.NewExitError("dataset read requires a PATH argument", 1)
				}
				tr, file, err := connect(c)
				if err != nil {
					return err
				}
				defer tr.Teardown()

				result, err := locator.Locate(tr, file, path, handle.KindGroup, false)
				if err != nil {
					return err
				}
				if result.Status != locator.StatusFound {
					return cli.NewExitError(fmt.Sprintf("no such dataset %q", path), 1)
				}

				ds, err := openDataset(tr, file, result.URI)
				if err != nil {
					return err
				}
				data, _, err := dispatch.New(tr).ReadDataset(ds, ds.Datatype, ds.Dataspace, hspace.All(), hspace.All())
				if err != nil {
					return err
				}
				fmt.Println(formatInt32LE(data))
				return nil
			},
		},
		{
			Name:      "write",
			Usage:     "write a 0..N-1 counting sequence of signed 32-bit integers into a dataset",
			ArgsUsage: "PATH",
			Action: func(c *cli.Context) error {
				path := c.Args().First()
				if path == "" {
					return cli.NewExitError("dataset write requires a PATH argument", 1)
				}
				tr, file, err := connect(c)
				if err != nil {
					return err
				}
				defer tr.Teardown()

				result, err := locator.Locate(tr, file, path, handle.KindGroup, false)
				if err != nil {
					return err
				}
				if result.Status != locator.StatusFound {
					return cli.NewExitError(fmt.Sprintf("no such dataset %q", path), 1)
				}

				ds, err := openDataset(tr, file, result.URI)
				if err != nil {
					return err
				}
				n, err := dispatch.NumSelectedElements(ds.Dataspace, hspace.All())
				if err != nil {
					return err
				}
				data := make([]int32, n)
				for i := range data {
					data[i] = int32(i)
				}
				if err := dispatch.New(tr).WriteDataset(ds, ds.Datatype, ds.Dataspace, hspace.All(), hspace.All(), encodeInt32LE(data), nil); err != nil {
					return err
				}
				fmt.Printf("wrote %d elements to %s\n", n, path)
				return nil
			},
		},
	},
}

var locateCommand = cli.Command{
	Name:      "locate",
	Usage:     "resolve a path and report its kind and URI",
	ArgsUsage: "PATH",
	Action: func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			return cli.NewExitError("locate requires a PATH argument", 1)
		}
		tr, file, err := connect(c)
		if err != nil {
			return err
		}
		defer tr.Teardown()

		result, err := locator.Locate(tr, file, path, handle.KindGroup, false)
		if err != nil {
			return err
		}
		if result.Status != locator.StatusFound {
			fmt.Println("not found")
			return nil
		}
		fmt.Printf("%s: %s\n", result.Kind, result.URI)
		return nil
	},
}

var demoCommand = cli.Command{
	Name:  "demo",
	Usage: "create a group and dataset, write a counting sequence, and read it back",
	Action: func(c *cli.Context) error {
		tr, file, err := connect(c)
		if err != nil {
			return err
		}
		defer tr.Teardown()

		groupLink, err := reqbuild.ResolveLink(tr, file, "h5restctl_demo")
		if err != nil {
			return err
		}
		groupBody := map[string]interface{}{}
		if groupLink != nil {
			groupBody["link"] = map[string]interface{}{"id": groupLink.ParentURI, "name": groupLink.Name}
		}
		groupTarget, err := tr.Template("groups", nil)
		if err != nil {
			return err
		}
		var groupResp map[string]interface{}
		if err := tr.Post(groupTarget, groupBody, &groupResp); err != nil {
			return err
		}
		fmt.Printf("created group h5restctl_demo -> %v\n", groupResp["id"])

		datasetPath := "h5restctl_demo/counts"
		datasetLink, err := reqbuild.ResolveLink(tr, file, datasetPath)
		if err != nil {
			return err
		}
		space, err := hspace.NewSimple([]uint64{10}, nil)
		if err != nil {
			return err
		}
		datasetBody, err := reqbuild.DatasetRequest(htype.NewInteger(4, true, true), space, dcpl.Default(), datasetLink, htype.DefaultMaxDepth)
		if err != nil {
			return err
		}
		datasetTarget, err := tr.Template("datasets", nil)
		if err != nil {
			return err
		}
		var datasetResp map[string]interface{}
		if err := tr.Post(datasetTarget, datasetBody, &datasetResp); err != nil {
			return err
		}
		datasetURI, _ := datasetResp["id"].(string)
		fmt.Printf("created dataset %s -> %s\n", datasetPath, datasetURI)

		ds, err := openDataset(tr, file, datasetURI)
		if err != nil {
			return err
		}
		data := make([]int32, 10)
		for i := range data {
			data[i] = int32(i)
		}
		d := dispatch.New(tr)
		if err := d.WriteDataset(ds, ds.Datatype, ds.Dataspace, hspace.All(), hspace.All(), encodeInt32LE(data), nil); err != nil {
			return err
		}

		raw, _, err := d.ReadDataset(ds, ds.Datatype, ds.Dataspace, hspace.All(), hspace.All())
		if err != nil {
			return err
		}
		fmt.Println("read back:", formatInt32LE(raw))
		return nil
	},
}

func parseDims(s string) ([]uint64, error) {
	fields := strings.Split(s, ",")
	dims := make([]uint64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid dimension %q: %v", f, err)
		}
		dims[i] = v
	}
	return dims, nil
}
