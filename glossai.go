// Package glossai provides a glossary-consistent AI batch translation
// engine for long-form text.
//
// Glossai keeps terminology stable across a queue of documents: a deep
// scan extracts recurring terms from a corpus sample and resolves each
// one to a target-language rendering exactly once, and every document
// translation then carries the glossary as a mandatory mapping. A batch
// run works through untranslated documents strictly in order with
// pause/resume/stop control, per-item failure isolation and a cooldown
// between provider dispatches.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/glossai"
//	    "github.com/ZaguanLabs/glossai/provider"
//	    "github.com/ZaguanLabs/glossai/store"
//	)
//
//	func main() {
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//	    st := store.NewMemoryStore()
//
//	    // Build the project glossary once.
//	    scanner := glossai.NewScanner("en_US", p, p, st.Glossary())
//	    if _, err := scanner.DeepScan(context.Background(), "novel-1", docs); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Translate everything still pending.
//	    translator := glossai.NewTranslator("en_US", p)
//	    sched := glossai.NewScheduler(translator, st.Glossary(), st.Documents())
//	    run, err := sched.Start(context.Background(), "novel-1", docs)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    report := run.Wait()
//	    fmt.Printf("done: %d ok, %d failed\n", report.Succeeded, report.Failed)
//	}
package glossai
