package dedup

// GroupByHash clusters records that share an identity hash. Each hash seen at
// least twice yields one SimilarityExact cluster whose members keep input
// order; clusters are ordered by the first occurrence of their hash. Scores
// are left at zero for the Ranker.
func GroupByHash(records []Record) []Cluster {
	if len(records) < 2 {
		return nil
	}

	order := make([]string, 0, len(records))
	byHash := make(map[string][]Record, len(records))
	for _, record := range records {
		if _, seen := byHash[record.Hash]; !seen {
			order = append(order, record.Hash)
		}
		byHash[record.Hash] = append(byHash[record.Hash], record)
	}

	var clusters []Cluster
	for _, hash := range order {
		group := byHash[hash]
		if len(group) < 2 {
			continue
		}
		cluster := newCluster(group[0], SimilarityExact)
		for _, record := range group[1:] {
			cluster.Members = append(cluster.Members, ScoredRecord{Record: record})
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}
