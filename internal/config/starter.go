package config

// StarterConfig is the document written by `ttydash init`: a working
// Proxmox-flavoured dashboard with a header view and a guest table, meant to
// be edited down to the user's own metrics.
const StarterConfig = `# ttydash configuration
#
# A terminal dashboard driven by a Prometheus-compatible backend.
# Edit base_url below, then run: ttydash --tty /dev/tty1

datasources:
  prometheus:
    base_url: http://localhost:9090
    timeout_s: 3.0

globals:
  refresh:
    fast_s: 0.2
    bulk_s: 5.0
  vars:
    node: pve
  defaults:
    missing_value: "---"

colors:
  status:
    running: "\x1b[32m"
    stopped: "\x1b[31m"
  reset: "\x1b[0m"

metrics:
  - id: cpu
    query: pve_node_cpu_usage_ratio{node="${node}"}
  - id: mem_used
    query: pve_node_memory_used_bytes{node="${node}"}
  - id: mem_total
    query: pve_node_memory_total_bytes{node="${node}"}
  - id: guest_cpu
    query: pve_guest_cpu_usage_ratio
    expose_labels: [id, name, status]
  - id: guest_mem
    query: pve_guest_memory_used_bytes

derived:
  - id: cpu_pct
    expr: cpu * 100
  - id: mem_pct
    expr: mem_used / mem_total * 100
  - id: guest_cpu_pct
    expr: guest_cpu * 100
    per_row: true

views:
  - id: summary
    type: header
    template: "${uptime} | cpu ${cpu_pct|percent:1} mem ${mem_pct|percent:0} | ${guests} guests\n"
    computed_values:
      uptime:
        builtin: uptime
      guests:
        from_metric: guest_cpu
        op: count

  - id: guests
    type: table
    source:
      rows_from:
        anchor_metric: guest_cpu
        join_on_label: id
      sort:
        by: guest_cpu_pct
        order: desc
    columns:
      - id: id
        title: ID
        value: "${id}"
        format: number
        decimals: 0
        width: 6
        align: right
      - id: name
        title: NAME
        value: "${name}"
        width: 20
      - id: status
        title: STATUS
        value: "${status}"
        width: 10
        style:
          color_by_label:
            status:
              running: "${colors.status.running}"
              stopped: "${colors.status.stopped}"
          reset: "${colors.reset}"
      - id: cpu
        title: CPU
        value: "${guest_cpu_pct}"
        format: percent
        decimals: 1
        width: 7
        align: right
      - id: mem
        title: MEM
        value: "${guest_mem}"
        format: "-b"
        width: 10
        align: right

layout:
  - view: summary
  - view: guests
`
