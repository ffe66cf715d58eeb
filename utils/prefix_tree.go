package utils

// StringPrefixTree is a trie keyed by whole tokens. Every node that closes a
// registered phrase carries the labels the phrase was added with.
type StringPrefixTree struct {
	Root *StringPrefixTreeNode
}

type StringPrefixTreeNode struct {
	Labels   []string
	Children map[string]*StringPrefixTreeNode
}

func NewStringPrefixTree() *StringPrefixTree {
	return &StringPrefixTree{Root: newStringPrefixTreeNode()}
}

func newStringPrefixTreeNode() *StringPrefixTreeNode {
	return &StringPrefixTreeNode{Children: make(map[string]*StringPrefixTreeNode)}
}

// Add registers the token sequence under label. Empty sequences are ignored and
// adding the same sequence twice with one label keeps a single label.
func (pTree *StringPrefixTree) Add(tokens []string, label string) bool {
	if len(tokens) == 0 || len(label) == 0 {
		return false
	}
	if pTree.Root == nil {
		pTree.Root = newStringPrefixTreeNode()
	}

	node := pTree.Root
	for _, token := range tokens {
		childNode, isOk := node.Children[token]
		if !isOk {
			childNode = newStringPrefixTreeNode()
			node.Children[token] = childNode
		}
		node = childNode
	}

	for _, existing := range node.Labels {
		if existing == label {
			return false
		}
	}
	node.Labels = append(node.Labels, label)
	return true
}

// Walk follows tokens from the root starting at from and calls visit for every
// node on the path that closes a phrase. end is exclusive.
func (pTree *StringPrefixTree) Walk(tokens []string, from int, visit func(labels []string, end int)) {
	if pTree.Root == nil {
		return
	}
	node := pTree.Root
	for i := from; i < len(tokens); i++ {
		childNode, isOk := node.Children[tokens[i]]
		if !isOk {
			return
		}
		node = childNode
		if len(node.Labels) > 0 {
			visit(node.Labels, i+1)
		}
	}
}
