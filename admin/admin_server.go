// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>


// Package admin serves runtime administration endpoints of the stake node.
package admin

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/metanode/stake/co"
	"github.com/metanode/stake/health"
	"github.com/metanode/stake/log"
)

var logger = log.WithContext("pkg", "admin")

// HTTPHandler routes the admin endpoints. The health route is left out when
// h is nil.
//
//	GET  /admin/loglevel  current level
//	POST /admin/loglevel  {"level":"debug"}
//	GET  /admin/health    node status, 503 when unhealthy
func HTTPHandler(logLevel *slog.LevelVar, h *health.Health) http.Handler {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()
	sub.Path("/loglevel").Methods(http.MethodGet).HandlerFunc(getLogLevel(logLevel))
	sub.Path("/loglevel").Methods(http.MethodPost).HandlerFunc(postLogLevel(logLevel))
	if h != nil {
		sub.Path("/health").Methods(http.MethodGet).HandlerFunc(getHealth(h))
	}
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return handlers.CompressHandler(router)
}

// StartServer listens on addr and serves the admin endpoints until the returned
// close func is called.
func StartServer(addr string, logLevel *slog.LevelVar, h *health.Health) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin API addr [%v]", addr)
	}

	srv := &http.Server{
		Handler:           HTTPHandler(logLevel, h),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
	}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("admin server stopped", "err", err)
		}
	})
	return "http://" + listener.Addr().String() + "/admin", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
