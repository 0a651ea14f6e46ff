package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/simulation"
	"github.com/okian/podium/internal/intake"
	"github.com/okian/podium/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// clearPodiumEnv unsets PODIUM_* variables for the test and restores them afterwards.
func clearPodiumEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, config.EnvPrefix) {
			t.Setenv(key, "")
			_ = os.Unsetenv(key)
		}
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSimulateCommand(t *testing.T) {
	convey.Convey("Given the simulate command", t, func() {
		clearPodiumEnv(t)
		t.Setenv("PODIUM_PROGRESS_STEPS", "0")

		convey.Convey("When the roster comes from a file", func() {
			path := writeRoster(t, `[{"name":"A","points":90},{"name":"B","points":88}]`)
			out, _, err := execute(t, "", "simulate", "--input", path, "--events", "1", "--trials", "2000", "--seed", "42")

			convey.Convey("Then the initial data and the table are printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "--- Initial Standings ---")
				convey.So(out, convey.ShouldContainSubstring, "A: 90 points")
				convey.So(out, convey.ShouldContainSubstring, "Trials: 2000")
				convey.So(out, convey.ShouldContainSubstring, "--- Estimated Championship Probabilities ---")
				convey.So(out, convey.ShouldContainSubstring, "Seed: 42")
			})

			convey.Convey("Then the same seed prints the same table", func() {
				again, _, err := execute(t, "", "simulate", "--input", path, "--events", "1", "--trials", "2000", "--seed", "42", "--workers", "1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(again, convey.ShouldEqual, out)
			})
		})

		convey.Convey("When only the leader is requested", func() {
			path := writeRoster(t, `[{"name":"Alpha","points":90},{"name":"Bravo","points":1}]`)
			out, _, err := execute(t, "", "simulate", "--input", path, "--events", "1", "--trials", "50", "--top", "1")

			convey.Convey("Then the table lists one row", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "| Alpha")
				convey.So(out, convey.ShouldNotContainSubstring, "| Bravo")
			})
		})

		convey.Convey("When the roster comes from stdin", func() {
			out, _, err := execute(t, `[{"driver":"A","score":10}]`, "simulate", "--input", "-", "--events", "0", "--trials", "10")

			convey.Convey("Then the single competitor is certain champion", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "100.00")
			})
		})

		convey.Convey("When the roster comes from stdin without --events", func() {
			out, _, err := execute(t, `[{"driver":"A","score":10}]`, "simulate", "--input", "-", "--trials", "10")

			convey.Convey("Then the command fails before reading anything", func() {
				convey.So(errors.Is(err, errEventsFromStdin), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "--events")
				convey.So(out, convey.ShouldNotContainSubstring, "Initial Standings")
			})
		})

		convey.Convey("When the roster is entered interactively", func() {
			stdin := "manual\nA\n90\nB\n88\ndone\n1\n"
			out, _, err := execute(t, stdin, "simulate", "--trials", "500", "--seed", "7")

			convey.Convey("Then prompts are followed by the report", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "--- Manual Roster Entry ---")
				convey.So(out, convey.ShouldContainSubstring, "How many events remain in the season?")
				convey.So(out, convey.ShouldContainSubstring, "Remaining events: 1")
				convey.So(out, convey.ShouldContainSubstring, "Chance (%)")
			})
		})

		convey.Convey("When input ends before the roster is complete", func() {
			_, _, err := execute(t, "manual\nA\n", "simulate")

			convey.Convey("Then the command aborts", func() {
				convey.So(errors.Is(err, intake.ErrAborted), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the roster file is invalid", func() {
			path := writeRoster(t, `[{"name":"A","points":-3}]`)
			_, _, err := execute(t, "", "simulate", "--input", path, "--events", "1")

			convey.Convey("Then a validation error is returned", func() {
				convey.So(errors.Is(err, intake.ErrValidation), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the trial count is not positive", func() {
			path := writeRoster(t, `[{"name":"A","points":1}]`)
			_, _, err := execute(t, "", "simulate", "--input", path, "--events", "1", "--trials", "0")

			convey.Convey("Then the run is rejected", func() {
				convey.So(errors.Is(err, simulation.ErrInvalidArgument), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			t.Setenv("PODIUM_TRIALS", "0")
			_, _, err := execute(t, "", "simulate", "--input", "-", "--events", "1")

			convey.Convey("Then setup fails before running", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestServeHandler(t *testing.T) {
	convey.Convey("Given the serve route tree", t, func() {
		clearPodiumEnv(t)
		cfg := config.New()
		cfg.RateLimitRPS = 0

		svc, handler := newHandler(cfg)
		convey.So(svc, convey.ShouldNotBeNil)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then every public route answers", func() {
			for _, path := range []string{"/", "/healthz", "/stats", "/metrics", "/api-docs", "/openapi.yaml"} {
				convey.So(get(path).Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then simulations run through the router", func() {
			w := httptest.NewRecorder()
			body := `{"competitors":[{"name":"A","points":3},{"name":"B","points":1}],"remaining_events":1,"trials":100,"seed":5}`
			req := httptest.NewRequest(http.MethodPost, "/v1/simulations", strings.NewReader(body))
			handler.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"seed":5`)
		})
	})
}

func TestServe(t *testing.T) {
	convey.Convey("Given a server on an ephemeral port", t, func() {
		clearPodiumEnv(t)
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"

		convey.Convey("When the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			err := serve(ctx, cfg)

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loop returns once the context is done", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()

			select {
			case <-done:
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("updater still running", convey.ShouldBeEmpty)
			}
		})
	})
}
