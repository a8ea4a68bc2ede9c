package app_test

import (
	"context"
	"iter"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/deja/internal/adapters/watcher"
	"go.trai.ch/deja/internal/app"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/deja/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// scriptedWatcher builds a mock watcher whose change stream the test feeds
// by hand. Closing happens through Stop.
func scriptedWatcher(ctrl *gomock.Controller, root string) (ports.Watcher, chan string) {
	changes := make(chan string)
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), root).Return(nil)
	w.EXPECT().Changes().Return(iter.Seq[string](func(yield func(string) bool) {
		for path := range changes {
			if !yield(path) {
				return
			}
		}
	}))
	w.EXPECT().Stop().DoAndReturn(func() error {
		close(changes)
		return nil
	})
	return w, changes
}

func TestApp_Watch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		root := initWorkspace(t)
		a, executor := newTestApp(t, ctrl)
		writeFile(t, "data.txt", "raw")

		executor.EXPECT().
			Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(scripted("cooked"))

		_, err := a.Run(context.Background(), app.RunOptions{
			Plan:    "cook",
			Command: []string{"cook"},
			Inputs:  []string{"data.txt"},
			Outputs: []string{"out.txt"},
		})
		require.NoError(t, err)

		w, changes := scriptedWatcher(ctrl, root)
		a = a.WithWatcherFactory(func(ports.Logger) (ports.Watcher, error) {
			return w, nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reports := make(chan *domain.StatusReport)
		errCh := make(chan error, 1)
		go func() {
			errCh <- a.Watch(ctx, app.StatusOptions{}, func(r *domain.StatusReport) {
				reports <- r
			})
		}()

		// The initial report arrives before any file event.
		first := <-reports
		require.True(t, first.Clean())

		// A change triggers a debounced refresh.
		writeFile(t, "data.txt", "raw v2")
		changes <- filepath.Join(root, "data.txt")

		second := <-reports
		require.False(t, second.Clean())
		require.Equal(t, []string{"out.txt"}, second.SortedStaleOutputs())
		require.True(t, second.ModifiedInputs.Contains(domain.NewInternedString("data.txt")))

		cancel()
		require.NoError(t, <-errCh)
	})
}

func TestApp_Watch_IgnoresMetadataEvents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		root := initWorkspace(t)
		a, executor := newTestApp(t, ctrl)
		writeFile(t, "data.txt", "raw")

		executor.EXPECT().
			Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(scripted("cooked"))

		_, err := a.Run(context.Background(), app.RunOptions{
			Plan:    "cook",
			Command: []string{"cook"},
			Inputs:  []string{"data.txt"},
			Outputs: []string{"out.txt"},
		})
		require.NoError(t, err)

		w, changes := scriptedWatcher(ctrl, root)
		a = a.WithWatcherFactory(func(ports.Logger) (ports.Watcher, error) {
			return w, nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reports := make(chan *domain.StatusReport)
		errCh := make(chan error, 1)
		go func() {
			errCh <- a.Watch(ctx, app.StatusOptions{}, func(r *domain.StatusReport) {
				reports <- r
			})
		}()

		first := <-reports
		require.True(t, first.Clean())

		// Changes under the metadata directory never trigger a refresh.
		changes <- filepath.Join(root, domain.DefaultDatabasePath())

		// Sleep past the debounce window so the batch is delivered and
		// filtered, then check that no report was emitted for it.
		time.Sleep(2 * watcher.DefaultDebounceWindow)
		synctest.Wait()
		select {
		case <-reports:
			t.Fatal("metadata event must not trigger a refresh")
		default:
		}

		cancel()
		require.NoError(t, <-errCh)
	})
}
