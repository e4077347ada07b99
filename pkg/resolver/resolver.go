package resolver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/agentskill/skilllite/pkg/skill"
	"github.com/agentskill/skilllite/pkg/skillerr"
)

// keyringService/keyringLLMKey name the OS-keyring service and key used
// to resolve optional LLM credentials for the opt-in package-extraction
// step.
const (
	keyringService = "skilllite"
	keyringLLMKey  = "llm_api_key"
)

// LLMExtractor is the pluggable interface for step 2 of resolution
// (§4.2: "LLM extraction ... prompt for package names, JSON-parse the
// reply"). The core ships no concrete network-calling implementation —
// LLM orchestration is an explicit Non-goal/external collaborator — but the
// resolution algorithm itself is complete and pluggable so a caller can
// supply one.
type LLMExtractor interface {
	ExtractPackages(ctx context.Context, compatibility string) ([]string, error)
}

// Result is the output of Resolve: a sorted, deduplicated package list plus
// which strategy produced it.
type Result struct {
	Packages []string
	Resolver ResolverTag
}

// Options configures one Resolve call.
type Options struct {
	SkillDir             string
	Compatibility        string
	Language             skill.Language
	LLM                  LLMExtractor // optional
	AllowUnknownPackages bool
	RegistryProbeClient  *http.Client
}

// Resolve implements the fail-forward resolution order from §4.2:
// lockfile hit → LLM extraction → whitelist match → empty.
func Resolve(ctx context.Context, opts Options) (Result, error) {
	if lf, err := LoadLockfile(opts.SkillDir); err == nil && lf.Valid(opts.Compatibility) {
		pkgs := sortedUnique(lf.ResolvedPackages)
		if !opts.AllowUnknownPackages {
			for _, p := range pkgs {
				if !IsWhitelisted(p, opts.Language) {
					return Result{}, skillerr.New(skillerr.UnknownPackage, p)
				}
			}
		}
		return Result{Packages: pkgs, Resolver: ResolverLock}, nil
	}

	if opts.LLM != nil && hasLLMCredentials() {
		raw, err := opts.LLM.ExtractPackages(ctx, opts.Compatibility)
		if err == nil && len(raw) > 0 {
			client := opts.RegistryProbeClient
			if client == nil {
				client = &http.Client{Timeout: 5 * time.Second}
			}
			var confirmed []string
			for _, pkg := range raw {
				if registryHasPackage(ctx, client, opts.Language, pkg) {
					confirmed = append(confirmed, pkg)
				}
			}
			if len(confirmed) > 0 {
				return Result{Packages: sortedUnique(confirmed), Resolver: ResolverLLM}, nil
			}
		}
	}

	if matches := whitelistMatch(opts.Compatibility, opts.Language); len(matches) > 0 {
		return Result{Packages: sortedUnique(matches), Resolver: ResolverWhitelist}, nil
	}

	return Result{Packages: nil, Resolver: ResolverNone}, nil
}

func hasLLMCredentials() bool {
	val, err := keyring.Get(keyringService, keyringLLMKey)
	return err == nil && val != ""
}

var registryURL = map[skill.Language]string{
	skill.LangPython: "https://pypi.org/pypi/%s/json",
	skill.LangNode:   "https://registry.npmjs.org/%s",
}

// registryHasPackage HEAD-probes PyPI/npm to confirm an LLM-suggested
// package name actually exists, per §4.2 step 2.
func registryHasPackage(ctx context.Context, client *http.Client, lang skill.Language, pkg string) bool {
	tmpl, ok := registryURL[lang]
	if !ok {
		return false
	}
	target := fmt.Sprintf(tmpl, pkg)
	if !registryURLIsSafe(target) {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
