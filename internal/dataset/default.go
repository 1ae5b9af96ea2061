package dataset

const DefaultSystem = "System: 16 vCPU, Fixed Backlog"

var (
	DefaultSizes   = []int{1024, 16384, 65536, 262144}
	DefaultThreads = []int{1, 2, 4, 8}
)

// Default returns the recorded 16 vCPU run. Every call returns a fresh copy.
func Default() *Benchmark {
	return &Benchmark{
		System:  DefaultSystem,
		Sizes:   append([]int(nil), DefaultSizes...),
		Threads: append([]int(nil), DefaultThreads...),

		// Gbps
		Throughput: Table{
			1: {
				Baseline: {0.19, 5.09, 18.06, 21.87},
				OneCopy:  {0.30, 4.88, 17.06, 35.54},
				ZeroCopy: {0.32, 4.68, 14.37, 30.87},
			},
			2: {
				Baseline: {0.67, 10.22, 32.92, 35.34},
				OneCopy:  {0.69, 8.84, 35.08, 45.22},
				ZeroCopy: {0.57, 8.75, 19.02, 56.81},
			},
			4: {
				Baseline: {1.38, 19.30, 54.13, 59.17},
				OneCopy:  {0.79, 18.93, 65.31, 48.56},
				ZeroCopy: {1.16, 17.98, 46.29, 57.37},
			},
			8: {
				Baseline: {2.66, 22.40, 96.30, 61.22},
				OneCopy:  {2.47, 32.46, 104.17, 53.34},
				ZeroCopy: {1.21, 30.28, 70.37, 54.07},
			},
		},

		// µs, keyed by message size
		Latency: Table{
			1024: {
				Baseline: {42.02, 12.06, 5.91, 3.07},
				OneCopy:  {26.57, 11.83, 10.36, 3.30},
				ZeroCopy: {24.99, 14.32, 7.05, 6.76},
			},
			16384: {
				Baseline: {25.74, 12.82, 6.78, 5.85},
				OneCopy:  {26.83, 14.82, 6.92, 4.03},
				ZeroCopy: {27.97, 14.97, 7.28, 4.32},
			},
			65536: {
				Baseline: {29.02, 15.92, 9.68, 5.44},
				OneCopy:  {30.72, 14.94, 8.02, 5.03},
				ZeroCopy: {36.45, 27.55, 11.32, 7.45},
			},
			262144: {
				Baseline: {95.84, 59.32, 35.43, 34.25},
				OneCopy:  {58.99, 46.37, 43.18, 39.31},
				ZeroCopy: {67.92, 36.91, 36.55, 38.78},
			},
		},

		// raw count, all threads
		LLCMisses: Table{
			1: {
				Baseline: {82378, 386032, 970920, 2538692},
				OneCopy:  {117422, 377525, 980784, 3556353},
				ZeroCopy: {142350, 391910, 1655819, 6970171},
			},
			2: {
				Baseline: {179421, 696834, 1924662, 5515685},
				OneCopy:  {197559, 715908, 1848736, 6353735},
				ZeroCopy: {381736, 868812, 3098450, 12747157},
			},
			4: {
				Baseline: {361521, 1316159, 3598334, 10715723},
				OneCopy:  {415278, 1380425, 3648373, 11153499},
				ZeroCopy: {782245, 1668163, 6648452, 14404180},
			},
			8: {
				Baseline: {878549, 2311479, 7172318, 24770389},
				OneCopy:  {909561, 2235728, 7503929, 23470600},
				ZeroCopy: {2272925, 4203586, 12388609, 17327901},
			},
		},

		Cycles: Table{
			1: {
				Baseline: {24181322, 42153700, 55665619, 200473496},
				OneCopy:  {27545335, 36679883, 60328528, 171972767},
				ZeroCopy: {33791102, 50248468, 91759740, 228117737},
			},
			2: {
				Baseline: {51500527, 81288058, 130218853, 543307838},
				OneCopy:  {56631678, 84612949, 115295377, 488447332},
				ZeroCopy: {78600670, 112431400, 180044373, 486739494},
			},
			4: {
				Baseline: {97026245, 165282289, 300460108, 1791324827},
				OneCopy:  {112666479, 163926629, 242861875, 1960114721},
				ZeroCopy: {151197932, 210989468, 450295956, 590454561},
			},
			8: {
				Baseline: {245376743, 391260429, 769403615, 6634530146},
				OneCopy:  {254136113, 380456909, 687663330, 7680936616},
				ZeroCopy: {366331813, 568779553, 1019027292, 1485509026},
			},
		},
	}
}
