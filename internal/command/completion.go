// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/meta"
)

const bashCompletionScript = `# bash completion for exefit
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_exefit()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "eq dq lq fq fav cache diff browse completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --local --output -o --sort -s --titles -t --tldr --api-url"

    case "$cmd" in
        eq)
            local opts="$common --schema --search -q --category --muscle --equipment --page -p --limit -l --fuzzy"
            ;;
        dq)
            local opts="$common --schema --refresh --plain"
            ;;
        lq)
            if [[ ${COMP_CWORD} -eq 2 && "$cur" != -* ]]; then
                COMPREPLY=( $(compgen -W "categories muscles equipment" -- "$cur") )
                return 0
            fi
            local opts="$common --schema"
            ;;
        fq)
            local opts="$common --schema --user -u"
            ;;
        fav)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "add rm has" -- "$cur") )
                return 0
            fi
            local opts="$common --user -u"
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "stats ls rm clear purge" -- "$cur") )
                return 0
            fi
            local opts="$common --all --hours"
            ;;
        diff)
            local opts="--api-url --format --color -c --update --tldr"
            ;;
        browse)
            local opts="--api-url --user -u --tldr"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi
    if [[ "$prev" == "--format" ]]; then
        COMPREPLY=( $(compgen -W "ascii delta" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _exefit exefit
`

const zshCompletionScript = `#compdef exefit

_exefit() {
  local -a cmds
  cmds=(
    'eq:exercise query'
    'dq:exercise detail query'
    'lq:lookup query'
    'fq:favorites query'
    'fav:manage favorites'
    'cache:inspect and manage the exercise cache'
    'diff:diff a cached exercise against the API'
    'browse:browse favorites interactively'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '--local[show timestamps in the configured timezone]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  '--api-url[wger API root]:url'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'exefit commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    eq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-q --search)'{-q,--search}'[match names and descriptions]:term' \
        '--category[category id]:id' \
        '--muscle[muscle id]:id' \
        '--equipment[equipment id]:id' \
        '(-p --page)'{-p,--page}'[page of results]:page' \
        '(-l --limit)'{-l,--limit}'[results per page]:limit' \
        '--fuzzy[rank names by fuzzy match]'
      ;;
    dq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--refresh[skip the cache]' \
        '--plain[strip markup from the description]' \
        '1:exercise id'
      ;;
    lq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '1:kind:(categories muscles equipment)'
      ;;
    fq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-u --user)'{-u,--user}'[user]:user'
      ;;
    fav)
      _arguments -C \
        $common \
        '(-u --user)'{-u,--user}'[user]:user' \
        '1:action:(add rm has)' \
        '2:exercise id'
      ;;
    cache)
      _arguments -C \
        $common \
        '--all[also remove lookup responses]' \
        '--hours[age in hours]:hours' \
        '1:action:(stats ls rm clear purge)'
      ;;
    diff)
      _arguments -C \
        '--api-url[wger API root]:url' \
        '--format[diff format]:format:(ascii delta)' \
        '(-c --color)'{-c,--color}'[color the diff]' \
        '--update[replace the cached copy]' \
        '1:exercise id'
      ;;
    browse)
      _arguments -C \
        '--api-url[wger API root]:url' \
        '(-u --user)'{-u,--user}'[user]:user'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _exefit exefit exefitgo
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := Writer(cmd)
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: exefit completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "exefit completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
