package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/disnet/skyboard/internal/types"
)

// partyRecords is one party's repository contents, read as a unit so a
// retry replays all four collection reads together.
type partyRecords struct {
	tasks     []types.Task
	ops       []types.Op
	trusts    []types.Trust
	approvals []types.Approval
	board     *types.Board
}

// Snapshot is one consistent cut of the record universe, assembled from
// every registered party's repository. §5 requires the materializer to see
// a consistent cut; Loader.Load reads each party's files once per call and
// never mutates them, giving the caller a conceptually copy-on-write view.
type Snapshot struct {
	Board     types.Board
	Tasks     []types.Task
	Ops       []types.Op
	Trusts    []types.Trust
	Approvals []types.Approval
}

// Loader reads party repositories from local directories per Registry.
type Loader struct {
	registry *Registry
	logger   *slog.Logger
}

// NewLoader constructs a Loader. A nil logger defaults to slog.Default().
func NewLoader(registry *Registry, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{registry: registry, logger: logger}
}

// PartyDirectory returns the registered local directory for party, if any.
// Write-side commands (move, trust, approve) use this to find where to
// append a newly built record.
func (l *Loader) PartyDirectory(party string) (string, bool) {
	src, ok := l.registry.Parties[party]
	return src.Directory, ok
}

// Load reads every registered party's repository concurrently and returns
// the combined record set plus the board identified by boardURI. A
// correlation id is attached to log lines for this call so a concurrent
// multi-board CLI invocation can be traced through the logs.
func (l *Loader) Load(ctx context.Context, boardURI types.URI) (Snapshot, error) {
	correlationID := uuid.NewString()
	log := l.logger.With(slog.String("correlation_id", correlationID))

	boardOwner, _, _, err := boardURI.Parse()
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: invalid board uri %q: %w", boardURI, err)
	}

	results := make(map[string]partyRecords, len(l.registry.Parties))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for party, src := range l.registry.Parties {
		party, src := party, src
		g.Go(func() error {
			res, err := readPartyWithRetry(gctx, party, src.Directory)
			if err != nil {
				// A single party's unreadable repository degrades the view
				// rather than failing the whole snapshot (§5, §7): its
				// records are simply absent until the next load.
				log.Warn("snapshot: party repository unreadable, skipping", slog.String("party", party), slog.String("error", err.Error()))
				return nil
			}
			if types.Party(party) == boardOwner {
				board, ok, berr := readBoard(src.Directory, boardURI)
				if berr != nil {
					log.Warn("snapshot: board record unreadable", slog.String("party", party), slog.String("error", berr.Error()))
				} else if ok {
					res.board = &board
				}
			}
			mu.Lock()
			results[party] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: loading repositories: %w", err)
	}

	var snap Snapshot
	var foundBoard bool
	for _, res := range results {
		snap.Tasks = append(snap.Tasks, res.tasks...)
		snap.Ops = append(snap.Ops, res.ops...)
		snap.Trusts = append(snap.Trusts, res.trusts...)
		snap.Approvals = append(snap.Approvals, res.approvals...)
		if res.board != nil {
			snap.Board = *res.board
			foundBoard = true
		}
	}
	if !foundBoard {
		return Snapshot{}, fmt.Errorf("snapshot: board %q not found in any registered repository", boardURI)
	}
	return snap, nil
}

// readPartyWithRetry wraps a single party's read in a bounded exponential
// backoff, guarding against the transient read errors a real repository
// fetch over the network would see (the local filesystem read this
// reference implementation performs rarely needs it, but the retry
// boundary is where a networked sync layer would plug in).
func readPartyWithRetry(ctx context.Context, party, dir string) (partyRecords, error) {
	var result partyRecords
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	err := backoff.Retry(func() error {
		tasks, terr := readJSONL[types.Task](filepath.Join(dir, "tasks.jsonl"))
		if terr != nil {
			return terr
		}
		ops, operr := readJSONL[types.Op](filepath.Join(dir, "ops.jsonl"))
		if operr != nil {
			return operr
		}
		trusts, trerr := readJSONL[types.Trust](filepath.Join(dir, "trusts.jsonl"))
		if trerr != nil {
			return trerr
		}
		approvals, aerr := readJSONL[types.Approval](filepath.Join(dir, "approvals.jsonl"))
		if aerr != nil {
			return aerr
		}
		result.tasks, result.ops, result.trusts, result.approvals = tasks, ops, trusts, approvals
		return nil
	}, bo)
	if err != nil {
		return partyRecords{}, fmt.Errorf("party %s: %w", party, err)
	}
	return result, nil
}

func readBoard(dir string, want types.URI) (types.Board, bool, error) {
	path := filepath.Join(dir, "board.json")
	data, err := os.ReadFile(path) // #nosec G304 - dir comes from the local repos.yaml registry
	if err != nil {
		if os.IsNotExist(err) {
			return types.Board{}, false, nil
		}
		return types.Board{}, false, err
	}
	var board types.Board
	if err := json.Unmarshal(data, &board); err != nil {
		return types.Board{}, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	if board.URI() != want {
		return types.Board{}, false, nil
	}
	return board, true, nil
}

// readJSONL reads a newline-delimited JSON file into a slice of T. A
// missing file is not an error: it means that party has no records of
// this collection yet.
func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path) // #nosec G304 - path comes from the local repos.yaml registry
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return out, nil
}
