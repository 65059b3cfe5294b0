package sqlinline

const QEnsureJobsTable = `--sql fe8cd0c4-93bf-4f46-a833-60767eecf37b
create table if not exists generation_jobs (
  id            text primary key,
  mode          text not null,
  status        text not null,
  progress      int not null default 0,
  prompt        text not null default '',
  result_url    text not null default '',
  error_message text not null default '',
  version       bigint not null default 0,
  created_at    timestamptz not null default now(),
  updated_at    timestamptz not null default now()
);
create index if not exists generation_jobs_terminal_created_idx
  on generation_jobs (created_at)
  where status in ('completed', 'done', 'error');
create index if not exists generation_jobs_pending_updated_idx
  on generation_jobs (updated_at)
  where status not in ('completed', 'done', 'error');
`

const QInsertJob = `--sql ac7d5e6f-81a8-4d0f-981c-e97f9a242241
insert into generation_jobs (id, mode, status, progress, prompt, result_url, error_message, version, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9);
`

const QSelectJob = `--sql d6ae552d-2ede-4b58-b9fd-956b53f04ceb
select id, mode, status, progress, prompt, result_url, error_message, version, created_at, updated_at
from generation_jobs
where id = $1;
`

// QUpdateJob only writes when the row still carries the version that was read
// and has not reached a terminal status in the meantime.
const QUpdateJob = `--sql cc31cbdc-7800-4477-bd7b-f8ad00d39494
update generation_jobs
set status = $3,
    progress = $4,
    result_url = $5,
    error_message = $6,
    updated_at = $7,
    version = version + 1
where id = $1
  and version = $2
  and status not in ('completed', 'done', 'error');
`

const QSweepJobs = `--sql 1a5bc27c-da96-411e-afca-f62a48d1babc
delete from generation_jobs
where (status in ('completed', 'done', 'error') and created_at < $1)
   or (status not in ('completed', 'done', 'error') and updated_at < $2);
`
