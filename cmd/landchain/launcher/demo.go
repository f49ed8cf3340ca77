package launcher

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pterm/pterm"

	"github.com/rony4d/go-landchain/network"
)

// step is one action of the demo scenario.
type step struct {
	title string
	run   func(nw *network.Network) (*network.RoundResult, error)
}

// scenario: three peers, two lands, one sale and a stake that cannot be
// covered.
var scenario = []step{
	{"alice joins with 200 coins", func(nw *network.Network) (*network.RoundResult, error) { return nw.Register("alice", 200) }},
	{"bob joins with 150 coins", func(nw *network.Network) (*network.RoundResult, error) { return nw.Register("bob", 150) }},
	{"alice declares land A", func(nw *network.Network) (*network.RoundResult, error) { return nw.DeclareLand("alice", "A") }},
	{"alice stakes 20", func(nw *network.Network) (*network.RoundResult, error) { return nw.Stake("alice", 20) }},
	{"bob stakes 100", func(nw *network.Network) (*network.RoundResult, error) { return nw.Stake("bob", 100) }},
	{"charlie joins with no coins", func(nw *network.Network) (*network.RoundResult, error) { return nw.Register("charlie", 0) }},
	{"charlie stakes 100", func(nw *network.Network) (*network.RoundResult, error) { return nw.Stake("charlie", 100) }},
	{"bob buys land A", func(nw *network.Network) (*network.RoundResult, error) { return nw.Buy("bob", "A") }},
	{"alice declares land B", func(nw *network.Network) (*network.RoundResult, error) { return nw.DeclareLand("alice", "B") }},
}

func playScenario(nw *network.Network, out io.Writer) error {
	for _, s := range scenario {
		fmt.Fprint(out, pterm.Info.Sprintln(s.title))
		res, err := s.run(nw)
		if err != nil {
			return fmt.Errorf("%s: %w", s.title, err)
		}
		if res != nil {
			printRound(out, res)
		}
	}
	return nil
}

func printRound(out io.Writer, res *network.RoundResult) {
	for _, r := range res.Rejected {
		fmt.Fprint(out, pterm.Warning.Sprintfln("rejected %q: %v", r.Tx.String(), r.Reason))
	}
	if res.Block == nil {
		fmt.Fprint(out, pterm.Warning.Sprintfln("%s was elected but had nothing to mint", res.Validator))
		return
	}
	fmt.Fprint(out, pterm.Success.Sprintfln("%s minted block %d with %d transactions",
		res.Validator, res.Block.Height, len(res.Block.Transactions)))
}

// renderState prints the chain and the derived registry as seen by peer.
func renderState(nw *network.Network, peer string, out io.Writer) error {
	n, err := nw.Node(peer)
	if err != nil {
		return err
	}
	peers := nw.Peers()

	chain := pterm.TableData{{"Height", "Validator", "Transactions", "Hash"}}
	for _, b := range n.Blocks() {
		h := b.Hash()
		chain = append(chain, []string{
			strconv.FormatUint(uint64(b.Height), 10),
			b.Validator,
			strconv.Itoa(len(b.Transactions)),
			hexutil.Encode(h[:6]),
		})
	}

	owners := n.GetLandOwners()
	lands := pterm.TableData{{"Land", "Owner", "Transfers"}}
	for _, id := range sortedKeys(owners) {
		lands = append(lands, []string{id, owners[id], strconv.Itoa(len(n.GetLandHistory(id)) - 1)})
	}

	balances := n.GetBalances()
	stakes := n.GetStakes(peers)
	ages := n.GetAges(peers)
	accounts := pterm.TableData{{"Peer", "Balance", "Stake", "Age"}}
	for _, id := range peers {
		accounts = append(accounts, []string{
			id,
			strconv.FormatInt(balances[id], 10),
			strconv.FormatInt(stakes[id], 10),
			strconv.FormatUint(ages[id], 10),
		})
	}

	for _, section := range []struct {
		title string
		data  pterm.TableData
	}{
		{"Chain", chain},
		{"Lands", lands},
		{"Accounts", accounts},
	} {
		fmt.Fprint(out, pterm.DefaultSection.Sprint(section.title))
		table, err := pterm.DefaultTable.WithHasHeader().WithData(section.data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, table)
	}

	if pending := n.PoolSize(); pending > 0 {
		fmt.Fprint(out, pterm.Info.Sprintfln("%d transactions still pending", pending))
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
