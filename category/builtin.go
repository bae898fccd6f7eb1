package category

// builtinRules is the process-wide default rule table. It is only read.
var builtinRules = []Rule{
	{Category: Navigation, Heads: []string{"cd", "ls", "pwd", "pushd", "popd", "dirs", "tree", "ll", "la", "l", "exa", "eza", "z", "zoxide", "fd", "ranger", "nnn", "lf", "broot"}},
	{Category: FileOperations, Heads: []string{"cp", "mv", "rm", "mkdir", "rmdir", "touch", "chmod", "chown", "chgrp", "ln", "rsync", "tar", "gzip", "gunzip", "zip", "unzip", "7z", "xz", "rename", "trash", "shred", "cat", "bat", "less", "more", "head", "tail", "find", "file", "stat", "du", "df"}},
	{Category: Editing, Heads: []string{"vim", "vi", "nvim", "nano", "emacs", "code", "subl", "micro", "ed", "pico", "kate", "gedit", "hx", "helix", "atom"}},
	{Category: TextProcessing, Heads: []string{"grep", "rg", "ag", "sed", "awk", "sort", "uniq", "cut", "tr", "wc", "jq", "yq", "diff", "xargs", "tee"}},
	{Category: VersionControl, Heads: []string{"git", "hg", "svn", "fossil", "bzr", "cvs", "darcs", "gh", "glab", "tig", "lazygit", "git-lfs"}},
	{Category: PackageManagement, Heads: []string{"apt", "apt-get", "apt-cache", "dpkg", "yum", "dnf", "rpm", "pacman", "yay", "paru", "brew", "port", "snap", "flatpak", "zypper", "apk", "nix", "nix-env", "pip", "pip3", "pipx", "poetry", "uv", "conda", "npm", "npx", "pnpm", "yarn", "bun", "gem", "bundle", "cargo", "rustup", "composer"}},
	{Category: ProcessManagement, Heads: []string{"ps", "top", "htop", "btop", "kill", "pkill", "killall", "pgrep", "bg", "fg", "jobs", "nohup", "renice", "watch", "systemctl", "service", "journalctl", "lsof", "free", "uptime"}},
	{Category: Networking, Heads: []string{"ssh", "scp", "sftp", "ftp", "curl", "wget", "http", "ping", "traceroute", "tracepath", "mtr", "dig", "nslookup", "host", "whois", "netstat", "ss", "ip", "ifconfig", "iwconfig", "nmcli", "nc", "ncat", "telnet", "nmap", "tcpdump"}},
	{Category: Containers, Heads: []string{"docker", "docker-compose", "podman", "kubectl", "k9s", "helm", "minikube", "kind", "nerdctl", "ctr", "lxc", "vagrant", "virsh", "qemu", "colima"}},
	{Category: Databases, Heads: []string{"mysql", "psql", "pg_dump", "sqlite3", "mongo", "mongosh", "redis-cli", "sqlcmd", "clickhouse-client", "cqlsh", "influx"}},
	{Category: Build, Heads: []string{"make", "cmake", "ninja", "meson", "gcc", "g++", "clang", "clang++", "javac", "mvn", "gradle", "ant", "sbt", "go", "rustc", "tsc", "bazel", "dotnet"}},
	{Category: Scripting, Heads: []string{"python", "python3", "python2", "ipython", "node", "deno", "ruby", "perl", "php", "lua", "bash", "sh", "zsh", "fish", "dash", "ksh", "Rscript"}},
	{Category: ShellBuiltins, Heads: []string{"export", "source", ".", "alias", "unalias", "echo", "printf", "set", "unset", "history", "type", "which", "exit", "clear", "read", "eval", "fc", "hash", "trap", "ulimit", "umask"}},

	// "./deploy.sh" is both an execution and a script, at equal priority.
	{Category: Execution, Pattern: `^(\./|\.\./|~/|/)\S+`, Target: TargetHead, Name: "path-invocation"},
	{Category: Scripting, Pattern: `\.(sh|bash|zsh|fish|py|rb|pl|js|ts|lua|php)$`, Target: TargetHead, Name: "script-file"},
}
